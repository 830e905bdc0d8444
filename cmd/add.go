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
	"time"

	"github.com/penny-vault/nwapi/calculator"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var addCmdCurrency string

func init() {
	addCmd.Flags().StringVarP(&addCmdCurrency, "currency", "c", string(calculator.CNY), "Currency of the amount, CNY or USD")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Record the current net worth",
	Long:  `Record the current net worth. Thousands separators are ignored; USD amounts are converted to CNY with calculator.usd_rate.`,
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()

		amount, err := calculator.ParseAmount(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("invalid amount")
		}

		total, err := calculator.Total([]calculator.Row{
			{Amount: amount, Currency: calculator.Currency(addCmdCurrency)},
		}, usdRate())
		if err != nil {
			log.Fatal().Err(err).Str("Amount", args[0]).Msg("invalid amount")
		}

		store := connectStore(ctx)
		entry, err := store.Insert(ctx, total, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("could not record amount")
		}

		fmt.Printf("recorded %s on %s\n", formatCNY(entry.Amount.InexactFloat64()), time.Unix(entry.Date, 0).Format(time.RFC3339))
	},
}
