// Package redis caches mappings in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

const (
	DefaultKeyPrefix   = "tinyurl:short:"
	DefaultStatsPrefix = "tinyurl:stats:"

	// DefaultFlushInterval is how often counters are pushed to Redis by RunStatisticsFlusher.
	DefaultFlushInterval = time.Second

	scanCount    = 100
	flushTimeout = 2 * time.Second
)

const (
	statHits   = "hits"
	statMisses = "misses"
	statErrors = "errors"
)

type client interface {
	Get(ctx context.Context, key string) *goRedis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goRedis.StatusCmd
	Del(ctx context.Context, keys ...string) *goRedis.IntCmd
	IncrBy(ctx context.Context, key string, value int64) *goRedis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *goRedis.ScanCmd
	Ping(ctx context.Context) *goRedis.StatusCmd
}

type mappingDTO struct {
	Code           string     `json:"code"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
}

func fromEntity(m entity.Mapping) mappingDTO {
	dto := mappingDTO{
		Code:        m.Code().String(),
		Content:     m.Content().String(),
		CreatedAt:   m.CreatedAt(),
		AccessCount: m.AccessCount(),
	}
	if t, ok := m.LastAccessedAt(); ok {
		dto.LastAccessedAt = &t
	}
	return dto
}

func (d *mappingDTO) toEntity() (entity.Mapping, error) {
	code, err := entity.NewCode(d.Code)
	if err != nil {
		return entity.Mapping{}, err
	}

	content, err := entity.NewContent(d.Content)
	if err != nil {
		return entity.Mapping{}, err
	}

	var lastAccessedAt time.Time
	if d.LastAccessedAt != nil {
		lastAccessedAt = d.LastAccessedAt.UTC()
	}

	return entity.RestoreMapping(code, content, d.CreatedAt.UTC(), lastAccessedAt, d.AccessCount), nil
}

// counter keeps the instance total and the increments not yet pushed to Redis.
type counter struct {
	total   atomic.Int64
	pending atomic.Int64
}

func (c *counter) add() {
	c.total.Add(1)
	c.pending.Add(1)
}

// MappingCache keeps mappings under keyPrefix+code.
//
// Hit, miss and error counters are counted in process and pushed to Redis under statsPrefix by
// FlushStatistics, so lookups cost a single round trip and every instance reports the same
// figures. The instance's own counters are reported while Redis is unreachable.
type MappingCache struct {
	client      client
	logger      *slog.Logger
	policy      entity.TTLPolicy
	keyPrefix   string
	statsPrefix string

	hits   counter
	misses counter
	errors counter
}

type Option func(*MappingCache)

func WithKeyPrefix(prefix string) Option {
	return func(c *MappingCache) {
		c.keyPrefix = prefix
	}
}

func WithStatsPrefix(prefix string) Option {
	return func(c *MappingCache) {
		c.statsPrefix = prefix
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *MappingCache) {
		c.logger = logger
	}
}

// WithTTLPolicy sets the policy applied when a mapping is put without a TTL.
func WithTTLPolicy(policy entity.TTLPolicy) Option {
	return func(c *MappingCache) {
		c.policy = policy
	}
}

func NewMappingCache(client client, opts ...Option) *MappingCache {
	c := &MappingCache{
		client:      client,
		logger:      slog.Default(),
		policy:      entity.DefaultTTLPolicy(),
		keyPrefix:   DefaultKeyPrefix,
		statsPrefix: DefaultStatsPrefix,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *MappingCache) key(code entity.Code) string {
	return c.keyPrefix + code.String()
}

func (c *MappingCache) counters() map[string]*counter {
	return map[string]*counter{
		statHits:   &c.hits,
		statMisses: &c.misses,
		statErrors: &c.errors,
	}
}

// FindByCode returns entity.ErrCacheMiss when the code is not cached.
func (c *MappingCache) FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error) {
	const op = "adapter.cache.redis.MappingCache.FindByCode"

	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			c.misses.add()
			return entity.Mapping{}, fmt.Errorf("%s: %w", op, entity.ErrCacheMiss)
		}

		c.errors.add()
		return entity.Mapping{}, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	var dto mappingDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		c.errors.add()
		return entity.Mapping{}, fmt.Errorf("%s: failed to decode cached mapping: %w", op, err)
	}

	m, err := dto.toEntity()
	if err != nil {
		c.errors.add()
		return entity.Mapping{}, fmt.Errorf("%s: invalid cached mapping: %w", op, err)
	}

	c.hits.add()

	return m, nil
}

// Put caches the mapping for ttl. A non-positive ttl is replaced by the one the policy computes.
func (c *MappingCache) Put(ctx context.Context, m entity.Mapping, ttl time.Duration) error {
	const op = "adapter.cache.redis.MappingCache.Put"

	if ttl <= 0 {
		ttl = c.policy.Determine(m)
	}

	data, err := json.Marshal(fromEntity(m))
	if err != nil {
		return fmt.Errorf("%s: failed to encode mapping: %w", op, err)
	}

	if err := c.client.Set(ctx, c.key(m.Code()), data, ttl).Err(); err != nil {
		c.errors.add()
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

func (c *MappingCache) Evict(ctx context.Context, code entity.Code) error {
	const op = "adapter.cache.redis.MappingCache.Evict"

	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		c.errors.add()
		return fmt.Errorf("%s: failed to delete key: %w", op, err)
	}

	return nil
}

// EvictAll removes every cached mapping. Statistics are kept.
func (c *MappingCache) EvictAll(ctx context.Context) error {
	const op = "adapter.cache.redis.MappingCache.EvictAll"

	err := c.scan(ctx, func(keys []string) error {
		return c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		c.errors.add()
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *MappingCache) Size(ctx context.Context) (int64, error) {
	const op = "adapter.cache.redis.MappingCache.Size"

	var size int64

	err := c.scan(ctx, func(keys []string) error {
		size += int64(len(keys))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return size, nil
}

func (c *MappingCache) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Statistics reports the counters shared through Redis, or this instance's counters when they
// cannot be read. The size is reported as zero when the keys cannot be counted.
func (c *MappingCache) Statistics(ctx context.Context) (entity.CacheStatistics, error) {
	if err := c.FlushStatistics(ctx); err != nil {
		c.logger.DebugContext(ctx, "failed to flush cache statistics", slog.Any("err", err))
	}

	stats, err := c.sharedStatistics(ctx)
	if err != nil {
		stats = entity.CacheStatistics{
			Hits:   c.hits.total.Load(),
			Misses: c.misses.total.Load(),
			Errors: c.errors.total.Load(),
		}
	}

	size, err := c.Size(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "failed to count cached mappings", slog.Any("err", err))
		size = 0
	}
	stats.Size = size

	return stats, nil
}

// FlushStatistics adds the increments counted since the last flush to the shared counters.
// Increments that could not be written are kept for the next flush.
func (c *MappingCache) FlushStatistics(ctx context.Context) error {
	const op = "adapter.cache.redis.MappingCache.FlushStatistics"

	var errs []error

	for name, cnt := range c.counters() {
		n := cnt.pending.Swap(0)
		if n == 0 {
			continue
		}

		if err := c.client.IncrBy(ctx, c.statsPrefix+name, n).Err(); err != nil {
			cnt.pending.Add(n)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RunStatisticsFlusher flushes the counters every interval until ctx is done, then flushes once
// more.
func (c *MappingCache) RunStatisticsFlusher(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			defer cancel()

			if err := c.FlushStatistics(flushCtx); err != nil {
				c.logger.WarnContext(ctx, "failed to flush cache statistics on shutdown", slog.Any("err", err))
			}
			return nil
		case <-ticker.C:
			if err := c.FlushStatistics(ctx); err != nil {
				c.logger.WarnContext(ctx, "failed to flush cache statistics", slog.Any("err", err))
			}
		}
	}
}

func (c *MappingCache) sharedStatistics(ctx context.Context) (entity.CacheStatistics, error) {
	var (
		stats entity.CacheStatistics
		err   error
	)

	if stats.Hits, err = c.stat(ctx, statHits); err != nil {
		return entity.CacheStatistics{}, err
	}
	if stats.Misses, err = c.stat(ctx, statMisses); err != nil {
		return entity.CacheStatistics{}, err
	}
	if stats.Errors, err = c.stat(ctx, statErrors); err != nil {
		return entity.CacheStatistics{}, err
	}

	return stats, nil
}

func (c *MappingCache) stat(ctx context.Context, name string) (int64, error) {
	val, err := c.client.Get(ctx, c.statsPrefix+name).Result()
	if errors.Is(err, goRedis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// Ping checks that Redis is reachable.
func (c *MappingCache) Ping(ctx context.Context) error {
	const op = "adapter.cache.redis.MappingCache.Ping"

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
