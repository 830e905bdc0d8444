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

	"github.com/penny-vault/nwapi/common"
	"github.com/penny-vault/nwapi/data"
	"github.com/penny-vault/nwapi/data/database"
	"github.com/rs/zerolog/log"
)

// connectStore opens the database and returns the asset store; failures are
// fatal since no command can continue without it
func connectStore(ctx context.Context) *data.AssetStore {
	if err := database.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}

	store, err := data.NewAssetStore()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create asset store")
	}
	return store
}

// newManager loads the benchmark catalog and creates a quote manager
func newManager() *data.Manager {
	if err := common.SetupCache(); err != nil {
		log.Fatal().Err(err).Msg("could not setup cache")
	}

	catalog, err := data.LoadCatalog(benchmarkFile)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load benchmark catalog")
	}
	return data.NewManager(catalog)
}
