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
	"time"

	"github.com/penny-vault/nwapi/analytics"
)

const (
	// OwnKey is the response key of the user's own net worth series
	OwnKey = "assets"

	GroupAssets  = "assets"
	GroupVisitor = "visitor"
	GroupHistory = "history"
)

// Benchmark is a market series the user's net worth is compared against
type Benchmark struct {
	Key    string `toml:"key" json:"key"`
	Symbol string `toml:"symbol" json:"symbol"`
	Name   string `toml:"name" json:"name"`
}

// Group is a named set of benchmarks. Since is an ISO date; when set it
// overrides the start of the requested range. Proxy, when set, is a symbol
// whose closes stand in for the user's own series.
type Group struct {
	Name        string      `toml:"-" json:"name"`
	Description string      `toml:"description" json:"description"`
	Since       string      `toml:"since" json:"since,omitempty"`
	Proxy       string      `toml:"proxy" json:"proxy,omitempty"`
	Benchmarks  []Benchmark `toml:"benchmarks" json:"benchmarks"`
}

// SinceDate parses Since; ok is false when the group has no fixed start
func (g *Group) SinceDate() (since time.Time, ok bool, err error) {
	if g.Since == "" {
		return time.Time{}, false, nil
	}
	since, err = time.Parse(analytics.DateFormat, g.Since)
	if err != nil {
		return time.Time{}, false, err
	}
	return since, true, nil
}

type quoteResult struct {
	Idx    int
	Symbol string
	Data   *analytics.Series
	Err    error
}
