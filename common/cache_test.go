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

package common_test

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/common"
	"github.com/spf13/viper"
)

var _ = Describe("Cache", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		viper.Set("cache.redis", false)
		viper.Set("cache.local_size", 16)
		viper.Set("cache.ttl", 60)
		Expect(common.SetupCache()).To(Succeed())
	})

	It("round trips values through lz4", func() {
		in := bytes.Repeat([]byte("net worth "), 100)
		compressed, err := common.Compress(in)
		Expect(err).To(BeNil())
		Expect(len(compressed)).Should(BeNumerically("<", len(in)))

		out, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		Expect(out).To(Equal(in))
	})

	It("hashes keys deterministically", func() {
		Expect(common.CacheKey("yahoo", "SPY")).To(Equal(common.CacheKey("yahoo", "SPY")))
		Expect(common.CacheKey("yahoo", "SPY")).To(HaveLen(64))
		Expect(common.CacheKey("ab", "c")).ToNot(Equal(common.CacheKey("a", "bc")))
	})

	It("returns stored values", func() {
		key := common.CacheKey("test", "stored")
		Expect(common.CacheSet(ctx, key, []byte(`{"close": 1}`))).To(Succeed())

		val, err := common.CacheGet(ctx, key)
		Expect(err).To(BeNil())
		Expect(string(val)).To(Equal(`{"close": 1}`))
	})

	It("reports misses", func() {
		_, err := common.CacheGet(ctx, common.CacheKey("test", "missing"))
		Expect(errors.Is(err, common.ErrCacheMiss)).To(BeTrue())
	})

	It("serves concurrent writers and readers", func() {
		var wg sync.WaitGroup
		for idx := 0; idx < 8; idx++ {
			wg.Add(1)
			go func(idx int) {
				defer GinkgoRecover()
				defer wg.Done()
				key := common.CacheKey("test", "concurrent", strconv.Itoa(idx))
				Expect(common.CacheSet(ctx, key, []byte(strconv.Itoa(idx)))).To(Succeed())
				val, err := common.CacheGet(ctx, key)
				Expect(err).To(BeNil())
				Expect(string(val)).To(Equal(strconv.Itoa(idx)))
			}(idx)
		}
		wg.Wait()
	})

	It("forgets everything after a purge", func() {
		key := common.CacheKey("test", "purged")
		Expect(common.CacheSet(ctx, key, []byte("x"))).To(Succeed())
		common.CachePurge()
		_, err := common.CacheGet(ctx, key)
		Expect(errors.Is(err, common.ErrCacheMiss)).To(BeTrue())
	})
})
