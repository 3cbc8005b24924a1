// Package cache keeps rendered catalog responses (categories, products) in
// redis. Every write to the catalog bumps a version counter that is part of
// each key, so stale entries are never read again and simply expire.
package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/billiard-pos/utils"
)

const DefaultTTL = time.Minute

// Catalog is safe to use with a nil client or a nil receiver; every
// operation then degrades to a cache miss.
type Catalog struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewCatalog(rdb *redis.Client, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{rdb: rdb, ttl: ttl, prefix: "billiard:catalog"}
}

func (c *Catalog) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *Catalog) versionKey() string {
	return c.prefix + ":version"
}

// Key builds the cache key of one request under the current catalog version.
func (c *Catalog) Key(ctx context.Context, path, rawQuery string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("cache disabled")
	}
	version, err := c.rdb.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	sum := sha1.Sum([]byte(path + "?" + rawQuery))
	return fmt.Sprintf("%s:v%d:%x", c.prefix, version, sum[:]), nil
}

func (c *Catalog) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() || key == "" {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.ErrorLogger.Errorf("catalog cache get: %v", err)
		}
		return nil, false
	}
	return body, true
}

func (c *Catalog) Set(ctx context.Context, key string, body []byte) {
	if !c.Enabled() || key == "" {
		return
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		utils.ErrorLogger.Errorf("catalog cache set: %v", err)
	}
}

// Invalidate moves the catalog to a new version.
func (c *Catalog) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, c.versionKey()).Err(); err != nil {
		utils.ErrorLogger.Errorf("catalog cache invalidate: %v", err)
	}
}
