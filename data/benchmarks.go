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
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/nwapi/common"
	"github.com/rs/zerolog/log"
)

//go:embed benchmarks.toml
var defaultCatalog []byte

// Catalog maps a group name to its benchmarks
type Catalog map[string]*Group

// LoadCatalog parses the built-in benchmark catalog or, if fn is not empty,
// the TOML file at fn
func LoadCatalog(fn string) (Catalog, error) {
	doc := defaultCatalog
	if fn != "" {
		var err error
		doc, err = os.ReadFile(fn)
		if err != nil {
			log.Error().Err(err).Str("File", fn).Msg("failed to read benchmark catalog")
			return nil, err
		}
	}
	return ParseCatalog(doc)
}

// ParseCatalog unmarshals a TOML benchmark catalog and validates it
func ParseCatalog(doc []byte) (Catalog, error) {
	catalog := make(Catalog)
	if err := toml.Unmarshal(doc, &catalog); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal benchmark catalog")
		return nil, err
	}

	for name, group := range catalog {
		group.Name = name
		if _, _, err := group.SinceDate(); err != nil {
			return nil, fmt.Errorf("group %s: %w", name, err)
		}

		seen := make(map[string]bool, len(group.Benchmarks))
		for idx := range group.Benchmarks {
			bench := &group.Benchmarks[idx]
			bench.Symbol = strings.TrimSpace(bench.Symbol)
			if bench.Symbol == "" {
				return nil, fmt.Errorf("group %s: benchmark %d has no symbol", name, idx)
			}
			if bench.Key == "" {
				bench.Key = bench.Symbol
			}
			if bench.Key == OwnKey || seen[bench.Key] {
				return nil, fmt.Errorf("group %s: duplicate key %q", name, bench.Key)
			}
			seen[bench.Key] = true
		}
	}

	return catalog, nil
}

// Group returns the named group or ErrUnknownGroup
func (catalog Catalog) Group(name string) (*Group, error) {
	group, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownGroup)
	}
	return group, nil
}

// Symbols returns the distinct symbols used by any group, sorted
func (catalog Catalog) Symbols() []string {
	uniq := make(map[string]bool)
	for _, group := range catalog {
		if group.Proxy != "" {
			uniq[group.Proxy] = true
		}
		for _, bench := range group.Benchmarks {
			uniq[bench.Symbol] = true
		}
	}

	symbols := make([]string, 0, len(uniq))
	for k := range uniq {
		symbols = append(symbols, k)
	}
	common.ArrToUpper(symbols)
	sort.Strings(symbols)
	return symbols
}
