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
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/penny-vault/nwapi/calculator"
	"github.com/penny-vault/nwapi/dataframe"
	"github.com/penny-vault/nwapi/plot"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmdChart string

func init() {
	reportCmd.Flags().StringVar(&reportCmdChart, "chart", "", "Also write the growth chart as PNG to this file")
	rootCmd.AddCommand(reportCmd)
}

func usdRate() decimal.Decimal {
	rate := decimal.NewFromFloat(viper.GetFloat64("calculator.usd_rate"))
	if !rate.IsPositive() {
		return calculator.DefaultUSDRate
	}
	return rate
}

func cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func formatCNY(amount float64) string {
	return money.New(cents(amount), "CNY").Display()
}

func formatUSD(amount, rate float64) string {
	if rate <= 0 {
		return "-"
	}
	return money.New(cents(amount/rate), "USD").Display()
}

func formatOptional(v *float64, suffix string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}

// analyticsTable renders one row per series of the report
func analyticsTable(report *analytics.Report) string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)

	windows := make([]analytics.Window, len(analytics.StandardWindows))
	copy(windows, analytics.StandardWindows)
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })

	header := []string{"Series"}
	for _, w := range windows {
		header = append(header, w.String())
	}
	header = append(header, "CAGR", "Drawdown")
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, series := range report.Series {
		row := []string{series.Label}
		for _, w := range windows {
			row = append(row, analytics.FormatPercent(series.Returns[w]))
		}
		row = append(row, series.CAGRText, formatOptional(series.Drawdown.Percent, "%"))
		table.Append(row)
	}

	table.Render()
	return s.String()
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare the recorded net worth with the benchmarks",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		store := connectStore(ctx)
		manager := newManager()

		own, err := store.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load net worth history")
		}

		dashboard, err := manager.AssetDashboard(ctx, own, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("could not build report")
		}

		summary := dashboard.Analytics.Summary
		if summary.Latest == nil {
			fmt.Println("no net worth recorded yet; use `nwapi add <amount>`")
			return
		}

		fmt.Printf("As of:        %s\n", dashboard.Analytics.LatestDate)
		fmt.Printf("Net worth:    %s (%s)\n", formatCNY(*summary.Latest), formatUSD(*summary.Latest, dashboard.ExchangeRate))
		fmt.Printf("High point:   %s\n", formatCNY(*summary.HighPoint))
		fmt.Printf("Drawdown:     %s\n", formatOptional(summary.Percent, "%"))
		fmt.Printf("USD/CNY:      %.2f\n\n", dashboard.ExchangeRate)
		fmt.Println(analyticsTable(dashboard.Analytics))

		if reportCmdChart == "" {
			return
		}

		series := append([]*analytics.Series{dashboard.Own()}, dashboard.Benchmarks()...)
		buf, err := plot.RenderGrowth(dataframe.FromSeries(series...).Rebase(), nil)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render chart")
		}
		if err := os.WriteFile(reportCmdChart, buf, 0o644); err != nil {
			log.Fatal().Err(err).Str("File", reportCmdChart).Msg("could not write chart")
		}
	},
}
