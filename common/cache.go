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

package common

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

const defaultLocalCacheSize = 256

var (
	ErrCacheMiss          = errors.New("key not in cache")
	ErrCacheNotConfigured = errors.New("cache has not been setup")
)

var (
	rdb      *redis.Client
	cache    *lru.Cache
	cacheTTL time.Duration
	cacheMu  sync.RWMutex
)

type cacheEntry struct {
	expires time.Time
	val     []byte
}

// SetupCache creates the local LRU cache and, when cache.redis is set, the
// shared redis tier. Entries expire after cache.ttl seconds in both tiers.
func SetupCache() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return err
		}

		rdb = redis.NewClient(opt)
	} else {
		rdb = nil
	}

	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = defaultLocalCacheSize
	}

	var err error
	cache, err = lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return err
	}

	cacheTTL = time.Duration(viper.GetInt("cache.ttl")) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return nil
}

// CacheKey hashes parts into a fixed length cache key
func CacheKey(parts ...string) string {
	h := blake3.New()
	for _, part := range parts {
		if _, err := h.Write([]byte(part)); err != nil {
			log.Error().Stack().Err(err).Msg("could not write key part to blake3 hasher")
		}
		// separator so ("ab", "c") and ("a", "bc") hash differently
		if _, err := h.Write([]byte{0}); err != nil {
			log.Error().Stack().Err(err).Msg("could not write separator to blake3 hasher")
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheSet stores an lz4 compressed copy of val under key
func CacheSet(ctx context.Context, key string, val []byte) error {
	local, client, ttl := cacheTiers()
	if local == nil {
		return ErrCacheNotConfigured
	}

	b2, err := Compress(val)
	if err != nil {
		return err
	}
	local.Add(key, cacheEntry{
		expires: time.Now().Add(ttl),
		val:     b2,
	})

	if client != nil {
		return client.Set(ctx, key, b2, ttl).Err()
	}
	return nil
}

// CacheGet returns the value stored under key or ErrCacheMiss. A hit in
// redis repopulates the local cache.
func CacheGet(ctx context.Context, key string) ([]byte, error) {
	local, client, defaultTTL := cacheTiers()
	if local == nil {
		return nil, ErrCacheMiss
	}

	if v, ok := local.Get(key); ok {
		entry := v.(cacheEntry)
		if time.Now().Before(entry.expires) {
			return Decompress(entry.val)
		}
		local.Remove(key)
	}

	if client == nil {
		return nil, ErrCacheMiss
	}

	val, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("redis get failed")
		return nil, err
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = defaultTTL
	}
	local.Add(key, cacheEntry{
		expires: time.Now().Add(ttl),
		val:     val,
	})

	return Decompress(val)
}

// CachePurge drops every entry of the local cache
func CachePurge() {
	if local, _, _ := cacheTiers(); local != nil {
		local.Purge()
	}
}

func cacheTiers() (*lru.Cache, *redis.Client, time.Duration) {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return cache, rdb, cacheTTL
}
