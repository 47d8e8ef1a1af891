// Package cache keeps computed reports in Redis under a global version. Recording or
// deleting a sale or expense bumps the version, so every cached report goes stale at
// once without scanning keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	versionKey  = "reports:version"
	bumpChannel = "reports.bump"
)

// Lookup outcomes passed to a LookupRecorder
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// LookupRecorder counts cache lookups by outcome
type LookupRecorder interface {
	RecordCacheLookup(result string)
}

// ReportCache wraps Redis based caching with versioning controls. A nil cache, or one
// without a client, calls the loader every time. Concurrent misses on one key share a
// single loader call.
type ReportCache struct {
	client   *redis.Client
	ttl      time.Duration
	logger   *logrus.Logger
	recorder LookupRecorder
	builds   singleflight.Group
}

// NewReportCache instantiates the cache helper
func NewReportCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *ReportCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReportCache{client: client, ttl: ttl, logger: logger}
}

// SetRecorder registers where lookup outcomes are counted
func (c *ReportCache) SetRecorder(recorder LookupRecorder) {
	if c != nil {
		c.recorder = recorder
	}
}

func (c *ReportCache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(result)
	}
}

// Enabled reports whether results are actually stored
func (c *ReportCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"reports"}, parts...), ":")
	if !c.Enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader. Redis
// failures fall back to the loader; a report is never refused because the cache is down.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil {
		return Load(ctx, dest, loader)
	}
	if !c.Enabled() {
		return c.build(ctx, key, dest, loader, false)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := json.Unmarshal(payload, dest); err == nil {
			c.record(LookupHit)
			c.logger.WithField("key", key).Debug("Report cache hit")
			return nil
		}
		c.record(LookupMiss)
	case errors.Is(err, redis.Nil):
		c.record(LookupMiss)
	default:
		c.record(LookupError)
		c.logger.WithError(err).WithField("key", key).Warn("Report cache read failed")
		return c.build(ctx, key, dest, loader, false)
	}

	return c.build(ctx, key, dest, loader, true)
}

// build runs the loader once per key across concurrent callers and decodes the shared
// result into dest. With store set the encoded result is written back to Redis. The
// shared build ignores the first caller's cancellation; each caller stops waiting on its
// own context.
func (c *ReportCache) build(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error), store bool) error {
	buildCtx := context.WithoutCancel(ctx)
	result := c.builds.DoChan(key, func() (interface{}, error) {
		value, err := loader(buildCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if store {
			if err := c.client.Set(buildCtx, key, raw, c.ttl).Err(); err != nil {
				c.logger.WithError(err).WithField("key", key).Warn("Report cache write failed")
			}
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached report by incrementing the version and publishing it
func (c *ReportCache) Bump(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other instances until ctx
// is cancelled
func (c *ReportCache) ListenForInvalidation(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				current, err := c.client.Get(ctx, versionKey).Int64()
				if err == nil && current >= ver {
					continue
				}
				_ = c.client.Set(ctx, versionKey, ver, 0).Err()
			}
		}
	}()
	return nil
}

// Ping checks the Redis connection
func (c *ReportCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (c *ReportCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Load runs the loader and decodes its result into dest the same way a cache hit
// would, so callers see identical values with or without Redis
func Load(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
