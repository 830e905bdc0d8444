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
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/penny-vault/nwapi/auth"
	"github.com/penny-vault/nwapi/common"
	"github.com/penny-vault/nwapi/data"
	"github.com/penny-vault/nwapi/data/database"
	"github.com/penny-vault/nwapi/handler"
	"github.com/penny-vault/nwapi/middleware"
	"github.com/penny-vault/nwapi/observability/opentelemetry"
	"github.com/penny-vault/nwapi/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	bindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		log.Panic().Err(err).Msg("could not bind server.port")
	}

	bindEnv("server.cors_origins", "CORS_ORIGINS")
	serveCmd.Flags().String("cors-origins", "http://localhost:3000", "Comma separated list of origins allowed to call the API")
	if err := viper.BindPFlag("server.cors_origins", serveCmd.Flags().Lookup("cors-origins")); err != nil {
		log.Panic().Err(err).Msg("could not bind server.cors_origins")
	}

	bindEnv("quotes.refresh", "NW_QUOTES_REFRESH")
	serveCmd.Flags().Duration("refresh", time.Hour, "How often benchmark data is refreshed")
	if err := viper.BindPFlag("quotes.refresh", serveCmd.Flags().Lookup("refresh")); err != nil {
		log.Panic().Err(err).Msg("could not bind quotes.refresh")
	}

	viper.SetDefault("auth.login_per_minute", 10)
	viper.SetDefault("auth.login_burst", 5)

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the nwapi server",
	Long:  `Run HTTP server that implements the net worth API`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if err := common.SetupCache(); err != nil {
			log.Fatal().Err(err).Msg("could not setup cache")
		}

		shutdownTracing, err := opentelemetry.Setup()
		if err != nil {
			log.Fatal().Err(err).Msg("could not setup tracing")
		}

		// setup database
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		if err := database.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not migrate database")
		}

		store, err := data.NewAssetStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create asset store")
		}

		// Initialize data framework
		catalog, err := data.LoadCatalog(benchmarkFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load benchmark catalog")
		}
		manager := data.NewManager(catalog)
		log.Info().Strs("Symbols", catalog.Symbols()).Msg("initialized data framework")

		// Configure authentication
		issuer, err := auth.NewIssuerFromConfig()
		if err != nil {
			log.Error().Err(err).Msg("authentication is disabled; set ADMIN_USER, ADMIN_PASSWORD and JWT_SECRET")
		}

		h := handler.New(manager, issuer, store,
			handler.WithUSDRate(usdRate()))

		// Create new Fiber instance
		app := fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
		})

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			log.Info().Str("Signal", sig.String()).Msg("received signal; shutting down")
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("shutdown failed")
			}
		}()

		// Configure CORS
		corsConfig := cors.Config{
			AllowOrigins:     viper.GetString("server.cors_origins"),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET,POST,HEAD,OPTIONS",
			AllowCredentials: true,
		}
		app.Use(cors.New(corsConfig))

		// Setup logging and tracing middleware
		app.Use(middleware.NewLogger())
		app.Use(middleware.Tracing())

		// Setup routes
		limiter := auth.NewLimiter(viper.GetFloat64("auth.login_per_minute"), viper.GetInt("auth.login_burst"))
		router.SetupRoutes(app, h, issuer, limiter)

		// Refresh benchmark data
		scheduler := gocron.NewScheduler(common.GetTimezone())
		if _, err := scheduler.Every(viper.GetDuration("quotes.refresh")).Do(manager.Refresh, ctx); err != nil {
			log.Fatal().Err(err).Msg("could not schedule benchmark refresh")
		}
		scheduler.StartAsync()

		// Start server on http://${heroku-url}:${port}
		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}

		scheduler.Stop()
		if err := shutdownTracing(ctx); err != nil {
			log.Error().Err(err).Msg("could not flush traces")
		}
	},
}
