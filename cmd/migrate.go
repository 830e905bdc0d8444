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

	"github.com/penny-vault/nwapi/data/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(compactCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		if err := database.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Delete amounts superseded by a later amount on the same day",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		store := connectStore(ctx)

		if _, err := store.Compact(ctx); err != nil {
			log.Fatal().Err(err).Msg("compact failed")
		}
	},
}
