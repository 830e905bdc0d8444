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

package analytics_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/analytics"
)

var _ = Describe("Series", func() {
	Context("when constructing a series", func() {
		It("truncates dates to the day", func() {
			s, err := analytics.NewSeries("assets", []analytics.Observation{
				{Date: time.Date(2022, 3, 1, 17, 45, 3, 0, time.UTC), Amount: 10},
			})
			Expect(err).To(BeNil())
			Expect(s.Observations[0].Date).To(Equal(day(2022, 3, 1)))
		})

		It("does not alias the caller's slice", func() {
			obs := []analytics.Observation{{Date: day(2022, 1, 1), Amount: 10}}
			s, err := analytics.NewSeries("assets", obs)
			Expect(err).To(BeNil())
			obs[0].Amount = 99
			Expect(s.Observations[0].Amount).To(Equal(10.0))
		})

		It("rejects out of order observations", func() {
			_, err := analytics.NewSeries("assets", []analytics.Observation{
				{Date: day(2022, 2, 1), Amount: 10},
				{Date: day(2022, 1, 1), Amount: 11},
			})
			Expect(errors.Is(err, analytics.ErrUnsorted)).To(BeTrue())
		})

		It("rejects duplicate dates", func() {
			_, err := analytics.NewSeries("assets", []analytics.Observation{
				{Date: day(2022, 1, 1), Amount: 10},
				{Date: time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC), Amount: 11},
			})
			Expect(errors.Is(err, analytics.ErrDuplicateDate)).To(BeTrue())
		})

		It("rejects invalid amounts", func() {
			for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
				_, err := analytics.NewSeries("assets", []analytics.Observation{
					{Date: day(2022, 1, 1), Amount: amount},
				})
				Expect(errors.Is(err, analytics.ErrInvalidAmount)).To(BeTrue())
			}
		})

		It("sorts unordered input with SortSeries", func() {
			s, err := analytics.SortSeries("assets", []analytics.Observation{
				{Date: day(2022, 3, 1), Amount: 3},
				{Date: day(2022, 1, 1), Amount: 1},
				{Date: day(2022, 2, 1), Amount: 2},
			})
			Expect(err).To(BeNil())
			Expect(s.Amounts()).To(Equal([]float64{1, 2, 3}))
		})
	})

	Context("when slicing a series", func() {
		var s *analytics.Series

		BeforeEach(func() {
			s = mustSeries("SPY",
				[]time.Time{day(2022, 1, 1), day(2022, 6, 1), day(2023, 1, 1), day(2023, 6, 1)},
				[]float64{1, 2, 3, 4})
		})

		It("is inclusive on both ends", func() {
			res := s.Between(day(2022, 6, 1), day(2023, 1, 1))
			Expect(res.Label).To(Equal("SPY"))
			Expect(res.Amounts()).To(Equal([]float64{2, 3}))
		})

		It("returns an empty series for a reversed range", func() {
			Expect(s.Between(day(2023, 1, 1), day(2022, 1, 1)).Len()).To(Equal(0))
		})

		It("handles a nil series", func() {
			var empty *analytics.Series
			Expect(empty.Len()).To(Equal(0))
			Expect(empty.Amounts()).To(BeEmpty())
			_, ok := empty.Last()
			Expect(ok).To(BeFalse())
		})
	})
})
