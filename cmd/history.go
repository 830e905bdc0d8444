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

	"github.com/penny-vault/nwapi/data"
	"github.com/penny-vault/nwapi/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	historyCmdLast  int
	historyCmdFfill bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyCmdLast, "last", "n", 20, "Only print the last n days, 0 prints everything")
	historyCmd.Flags().BoolVar(&historyCmdFfill, "ffill", false, "Fill gaps with the previous close")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the merged close history of the history benchmarks",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		manager := newManager()

		rows, err := manager.History(ctx, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("could not load history")
		}

		df := dataframe.FromMerged(rows, historyColumns(manager)...)
		if historyCmdFfill {
			df = df.FFill()
		}
		if historyCmdLast > 0 {
			df = df.Last(historyCmdLast)
		}

		fmt.Println(df.Table())
	},
}

// historyColumns returns the keys of the history group in catalog order
func historyColumns(manager *data.Manager) []string {
	group, err := manager.Catalog().Group(data.GroupHistory)
	if err != nil {
		log.Fatal().Err(err).Msg("benchmark catalog has no history group")
	}

	cols := make([]string, 0, len(group.Benchmarks))
	for _, bench := range group.Benchmarks {
		cols = append(cols, bench.Key)
	}
	return cols
}
