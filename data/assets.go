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

package data

import (
	"context"
	"time"

	"github.com/penny-vault/nwapi/analytics"
	"github.com/penny-vault/nwapi/data/database"
	"github.com/penny-vault/nwapi/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Entry is a single recorded net worth amount
type Entry struct {
	Amount decimal.Decimal `json:"amount"`
	Date   int64           `json:"date"`
}

// AssetStore persists the user's net worth history in the assets table.
// Dates are stored as unix seconds.
type AssetStore struct {
	pool database.PgxIface
}

// NewAssetStore creates a store on top of the current database pool
func NewAssetStore() (*AssetStore, error) {
	pool, err := database.Pool()
	if err != nil {
		return nil, ErrNotConnected
	}
	return &AssetStore{pool: pool}, nil
}

// Insert records amount at the given time
func (store *AssetStore) Insert(ctx context.Context, amount decimal.Decimal, at time.Time) (*Entry, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "assets.Insert")
	defer span.End()

	entry := &Entry{
		Amount: amount,
		Date:   at.Unix(),
	}

	sql := "INSERT INTO assets (amount, date) VALUES ($1, $2)"
	if _, err := store.pool.Exec(ctx, sql, amount.String(), entry.Date); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		log.Error().Stack().Err(err).Str("Query", sql).Str("Amount", amount.String()).Msg("could not insert asset amount")
		return nil, err
	}

	log.Info().Str("Amount", amount.String()).Int64("Date", entry.Date).Msg("recorded net worth")
	return entry, nil
}

// Load returns the net worth history in ascending date order. When more
// than one amount was recorded on the same day only the latest one is kept.
func (store *AssetStore) Load(ctx context.Context) (*analytics.Series, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "assets.Load")
	defer span.End()

	sql := "SELECT date, amount FROM assets ORDER BY date ASC, id ASC"
	rows, err := store.pool.Query(ctx, sql)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		log.Error().Stack().Err(err).Str("Query", sql).Msg("could not query assets")
		return nil, err
	}
	defer rows.Close()

	obs := make([]analytics.Observation, 0, 256)
	for rows.Next() {
		var (
			ts     int64
			amount float64
		)
		if err := rows.Scan(&ts, &amount); err != nil {
			log.Error().Stack().Err(err).Str("Query", sql).Msg("could not scan asset row")
			return nil, err
		}

		dt := analytics.Day(time.Unix(ts, 0).UTC())
		o := analytics.Observation{Date: dt, Amount: amount}
		if n := len(obs); n > 0 && obs[n-1].Date.Equal(dt) {
			obs[n-1] = o
			continue
		}
		obs = append(obs, o)
	}

	if err := rows.Err(); err != nil {
		log.Error().Stack().Err(err).Str("Query", sql).Msg("asset query read failed")
		return nil, err
	}

	return analytics.NewSeries(OwnKey, obs)
}

// Ping checks that the asset store can reach the database
func (store *AssetStore) Ping(ctx context.Context) error {
	var one int
	if err := store.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Warn().Err(err).Msg("asset store ping failed")
		return err
	}
	return nil
}

// Compact deletes every amount that was superseded by a later amount on the
// same UTC day and returns the number of rows removed. Load already ignores
// these rows.
func (store *AssetStore) Compact(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "assets.Compact")
	defer span.End()

	sql := `DELETE FROM assets a USING assets b
WHERE a.date / 86400 = b.date / 86400
  AND (a.date < b.date OR (a.date = b.date AND a.id < b.id))`
	tag, err := store.pool.Exec(ctx, sql)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compact failed")
		log.Error().Stack().Err(err).Msg("could not delete superseded asset amounts")
		return 0, err
	}

	log.Info().Int64("NumDeleted", tag.RowsAffected()).Msg("compacted asset history")
	return tag.RowsAffected(), nil
}
