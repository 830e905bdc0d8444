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

package pgxmockhelper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

// CSVRows turns a CSV fixture into pgxmock rows. Column conversions are
// selected per column name with a type map:
//
//	date    - 2006-01-02 parsed to time.Time
//	unix    - 2006-01-02T15:04:05Z parsed to unix seconds (int64)
//	float64 - parsed with strconv.ParseFloat
//	int64   - parsed with strconv.ParseInt
//
// Columns without an entry are passed through as strings.
type CSVRows struct {
	rows    [][]interface{}
	header  []string
	dateCol int
}

func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rows := &CSVRows{
		dateCol: -1,
		rows:    make([][]interface{}, 0),
	}
	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	// header + trailing newline at a minimum
	lines := strings.Split(string(rawData), "\n")
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("input file does not have enough lines, need at least 2 (header + trailing new line)")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("input file is missing a trailing new line")
	}

	rows.header = strings.Split(lines[0], ",")
	lines = lines[1 : len(lines)-1]

	for _, ll := range lines {
		cols := make([]interface{}, len(rows.header))
		parts := strings.Split(ll, ",")
		if len(parts) != len(rows.header) {
			subLog.Panic().Str("Line", ll).Msg("column count does not match header")
		}
		for idx, val := range parts {
			colName := rows.header[idx]
			switch typeMap[colName] {
			case "date":
				parsed, err := time.Parse("2006-01-02", val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to datetime of format 2006-01-02")
				}
				cols[idx] = parsed
				rows.dateCol = idx
			case "unix":
				parsed, err := time.Parse(time.RFC3339, val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to RFC 3339 timestamp")
				}
				cols[idx] = parsed.Unix()
				rows.dateCol = idx
			case "float64":
				parsed, err := strconv.ParseFloat(val, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to float64")
				}
				cols[idx] = parsed
			case "int64":
				parsed, err := strconv.ParseInt(val, 10, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to int64")
				}
				cols[idx] = parsed
			default:
				cols[idx] = val
			}
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

// Between keeps the rows whose date column falls in [a, b]
func (csvRows *CSVRows) Between(a time.Time, b time.Time) *CSVRows {
	if len(csvRows.rows) == 0 {
		return csvRows
	}
	if csvRows.dateCol == -1 {
		log.Panic().Time("a", a).Time("b", b).Msg("no date column found")
	}

	newRows := make([][]interface{}, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		var t time.Time
		switch v := row[csvRows.dateCol].(type) {
		case time.Time:
			t = v
		case int64:
			t = time.Unix(v, 0).UTC()
		}
		if !t.Before(a) && !t.After(b) {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Len returns the number of rows
func (csvRows *CSVRows) Len() int {
	return len(csvRows.rows)
}

func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// MockAssetsQuery expects the asset history query and answers it with the
// rows of the CSV fixture fn (columns: date, amount)
func MockAssetsQuery(db pgxmock.PgxConnIface, fn string) {
	db.ExpectQuery("SELECT date, amount FROM assets").WillReturnRows(
		NewCSVRows(fn, map[string]string{
			"date":   "unix",
			"amount": "float64",
		}).Rows())
}

// MockAssetsInsert expects a single insert into the assets table
func MockAssetsInsert(db pgxmock.PgxConnIface, amount string, date int64) {
	db.ExpectExec("INSERT INTO assets").WithArgs(amount, date).WillReturnResult(pgconn.CommandTag("INSERT 0 1"))
}

// MockMigrate expects the schema migration transaction
func MockMigrate(db pgxmock.PgxConnIface, numStatements int) {
	db.ExpectBegin()
	for ii := 0; ii < numStatements; ii++ {
		db.ExpectExec("CREATE").WillReturnResult(pgconn.CommandTag("CREATE"))
	}
	db.ExpectCommit()
}
