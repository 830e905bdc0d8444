// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/penny-vault/nwapi/auth"
	"github.com/penny-vault/nwapi/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var benchmarkFile string

func bindEnv(key string, env ...string) {
	if err := viper.BindEnv(append([]string{key}, env...)...); err != nil {
		log.Panic().Err(err).Str("Key", key).Msg("could not bind environment variable")
	}
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Panic().Err(err).Str("Key", key).Str("Flag", flag).Msg("could not bind flag")
	}
}

func init() {
	// Database
	bindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	bindFlag("database.url", "database-url")

	// Admin credential
	bindEnv("admin.username", "ADMIN_USER")
	rootCmd.PersistentFlags().String("admin-user", "", "Username of the admin account")
	bindFlag("admin.username", "admin-user")

	bindEnv("admin.password", "ADMIN_PASSWORD")
	bindEnv("jwt.secret", "JWT_SECRET")

	bindEnv("jwt.ttl", "JWT_TTL")
	rootCmd.PersistentFlags().Duration("jwt-ttl", auth.DefaultTTL, "Lifetime of issued tokens")
	bindFlag("jwt.ttl", "jwt-ttl")

	// Logging configuration
	bindEnv("log.level", "NW_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level")
	bindFlag("log.level", "log-level")

	bindEnv("log.report_caller", "NW_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	bindFlag("log.report_caller", "log-report-caller")

	bindEnv("log.output", "NW_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	bindFlag("log.output", "log-output")

	bindEnv("log.pretty", "NW_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Format logs for humans instead of JSON")
	bindFlag("log.pretty", "log-pretty")

	// Cache
	bindEnv("cache.local_size", "NW_CACHE_LOCAL_SIZE")
	rootCmd.PersistentFlags().Int("cache-local-size", 256, "Number of responses kept in the in-process cache")
	bindFlag("cache.local_size", "cache-local-size")

	bindEnv("cache.redis", "NW_CACHE_REDIS")
	rootCmd.PersistentFlags().Bool("cache-redis", false, "Use redis as a second cache tier")
	bindFlag("cache.redis", "cache-redis")

	bindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "redis://localhost:6379/0", "Redis connection url")
	bindFlag("cache.redis_url", "cache-redis-url")

	bindEnv("cache.ttl", "NW_CACHE_TTL")
	rootCmd.PersistentFlags().Int("cache-ttl", 3600, "Seconds a cached quote response stays valid")
	bindFlag("cache.ttl", "cache-ttl")

	// Quotes
	bindEnv("quotes.base_url", "NW_QUOTES_BASE_URL")
	rootCmd.PersistentFlags().String("quotes-base-url", "", "Base url of the quote provider")
	bindFlag("quotes.base_url", "quotes-base-url")

	bindEnv("quotes.rate_limit", "NW_QUOTES_RATE_LIMIT")
	rootCmd.PersistentFlags().Int("quotes-rate-limit", 5, "Maximum quote provider requests per second")
	bindFlag("quotes.rate_limit", "quotes-rate-limit")

	bindEnv("quotes.max_in_flight", "NW_QUOTES_MAX_IN_FLIGHT")
	rootCmd.PersistentFlags().Int("quotes-max-in-flight", 4, "Maximum concurrent quote downloads")
	bindFlag("quotes.max_in_flight", "quotes-max-in-flight")

	bindEnv("quotes.exchange_rate_url", "NW_EXCHANGE_RATE_URL")
	rootCmd.PersistentFlags().String("exchange-rate-url", "", "Url of the USD/CNY exchange rate")
	bindFlag("quotes.exchange_rate_url", "exchange-rate-url")

	bindEnv("quotes.default_exchange_rate", "NW_DEFAULT_EXCHANGE_RATE")
	rootCmd.PersistentFlags().Float64("default-exchange-rate", 7.25, "USD/CNY rate used when the live rate is unavailable")
	bindFlag("quotes.default_exchange_rate", "default-exchange-rate")

	bindEnv("calculator.usd_rate", "NW_CALCULATOR_USD_RATE")
	rootCmd.PersistentFlags().Float64("calculator-usd-rate", 7, "USD/CNY rate used to total calculator rows")
	bindFlag("calculator.usd_rate", "calculator-usd-rate")

	// Tracing
	bindEnv("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP collector endpoint, tracing is disabled when empty")
	bindFlag("otlp.endpoint", "otlp-endpoint")

	bindEnv("otlp.http", "NW_OTLP_HTTP")
	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use HTTP instead of gRPC for the OTLP connection")
	bindFlag("otlp.http", "otlp-http")

	rootCmd.PersistentFlags().StringVar(&benchmarkFile, "benchmarks", "", "TOML benchmark catalog, defaults to the built-in catalog")
}

var rootCmd = &cobra.Command{
	Use:     "nwapi",
	Version: common.CurrentVersion.String(),
	Short:   "nwapi tracks net worth against market benchmarks",
	Long:    `Record net worth over time and compare its growth, drawdown and annualized return with stock indices and crypto currencies.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
