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
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

var (
	ErrCacheMiss = errors.New("key not found in cache")
)

var rdb *redis.Client
var cache *lru.Cache

// SetupCache creates the in-process LRU cache and, when cache.redis is set, connects the redis
// second level cache
func SetupCache() error {
	var err error
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
		size = 128
	}

	cache, err = lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return err
	}

	return nil
}

// CacheKey hashes the namespace and request parts into a fixed length cache key
func CacheKey(namespace string, parts ...[]byte) string {
	hasher := blake3.New()
	// writes to a blake3 hasher never fail
	_, _ = hasher.Write([]byte(namespace))
	for _, part := range parts {
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(part)
	}
	return namespace + ":" + hex.EncodeToString(hasher.Sum(nil))
}

func ttl() time.Duration {
	return time.Duration(viper.GetInt("cache.ttl")) * time.Second
}

// CacheSet stores a compressed copy of val under key in every configured cache level
func CacheSet(ctx context.Context, key string, val []byte) error {
	if cache == nil {
		return nil
	}

	compressed, err := compress(val)
	if err != nil {
		return err
	}
	cache.Add(key, compressed)

	if rdb != nil {
		return rdb.Set(ctx, key, compressed, ttl()).Err()
	}
	return nil
}

// CacheGet returns the value stored under key, checking the local cache before redis. Values
// found in redis are promoted to the local cache.
func CacheGet(ctx context.Context, key string) ([]byte, error) {
	if cache == nil {
		return nil, ErrCacheMiss
	}

	if v, ok := cache.Get(key); ok {
		return decompress(v.([]byte))
	}

	if rdb == nil {
		return nil, ErrCacheMiss
	}

	compressed, err := rdb.GetEx(ctx, key, ttl()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	cache.Add(key, compressed)
	return decompress(compressed)
}

// CachePurge empties the local cache; entries in redis expire on their own
func CachePurge() {
	if cache == nil {
		return
	}
	n := cache.Len()
	cache.Purge()
	log.Info().Int("NumEntries", n).Msg("purged local cache")
}

func compress(in []byte) ([]byte, error) {
	w := &bytes.Buffer{}
	zw := lz4.NewWriter(w)
	if _, err := io.Copy(zw, bytes.NewReader(in)); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decompress(in []byte) ([]byte, error) {
	w := &bytes.Buffer{}
	zr := lz4.NewReader(bytes.NewReader(in))
	if _, err := io.Copy(w, zr); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
