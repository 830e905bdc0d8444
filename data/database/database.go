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

package database

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// types

// PgxIface is the subset of pgxpool.Pool used by the application; tests
// replace it with a pgxmock connection
type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

var (
	ErrNotConnected = errors.New("database pool has not been initialized")
)

// Private

var pool PgxIface

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id SERIAL PRIMARY KEY,
		amount NUMERIC NOT NULL,
		date BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS assets_date_idx ON assets (date)`,
}

// Public

func SetPool(myPool PgxIface) {
	pool = myPool
}

// Pool returns the active connection pool
func Pool() (PgxIface, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool, nil
}

func Connect(ctx context.Context) error {
	myPool, err := pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return err
	}
	if err = myPool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		return err
	}
	SetPool(myPool)
	return nil
}

// Ping runs a trivial query to make sure the database is reachable
func Ping(ctx context.Context) error {
	if pool == nil {
		return ErrNotConnected
	}

	var one int
	if err := pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Warn().Err(err).Msg("database ping failed")
		return err
	}
	return nil
}

// Migrate creates the schema if it does not already exist. All statements
// run in a single transaction.
func Migrate(ctx context.Context) error {
	if pool == nil {
		return ErrNotConnected
	}

	trx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not create new transaction")
		return err
	}

	for _, sql := range migrations {
		if _, err := trx.Exec(ctx, sql); err != nil {
			log.Error().Stack().Err(err).Str("Query", sql).Msg("migration failed")
			if err := trx.Rollback(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return err
		}
	}

	if err := trx.Commit(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("failed to commit migrations")
		return err
	}

	log.Info().Int("NumStatements", len(migrations)).Msg("database schema is up to date")
	return nil
}
