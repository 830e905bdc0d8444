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

package plot_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/dataframe"
	"github.com/penny-vault/nwapi/plot"
)

var _ = Describe("RenderGrowth", func() {
	var (
		df *dataframe.DataFrame
	)

	BeforeEach(func() {
		df = &dataframe.DataFrame{
			Dates: []time.Time{
				time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			ColNames: []string{"assets", "SPY"},
			Vals: [][]float64{
				{0, math.NaN(), 12.5},
				{0, -3.2, 4.1},
			},
		}
	})

	It("renders a png", func() {
		buf, err := plot.RenderGrowth(df, nil)
		Expect(err).To(BeNil())
		Expect(buf[:4]).To(Equal([]byte{0x89, 'P', 'N', 'G'}))
	})

	It("respects the requested size", func() {
		buf, err := plot.RenderGrowth(df, &plot.Options{Title: "Net worth", Width: 300, Height: 200})
		Expect(err).To(BeNil())
		Expect(len(buf)).To(BeNumerically(">", 0))
	})

	It("errors when no column has enough data", func() {
		df = &dataframe.DataFrame{
			Dates:    df.Dates[:1],
			ColNames: []string{"assets"},
			Vals:     [][]float64{{0}},
		}
		_, err := plot.RenderGrowth(df, nil)
		Expect(err).To(MatchError(plot.ErrNotEnoughData))
	})
})
