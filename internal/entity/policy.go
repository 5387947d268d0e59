package entity

import "time"

const (
	DefaultCacheTTL            = time.Hour
	DefaultPopularCacheTTL     = 24 * time.Hour
	DefaultPopularityThreshold = 100
)

// TTLPolicy decides how long a mapping may stay in the cache.
//
// The decision only looks at the access count at the moment of caching, so a popular mapping
// whose entry expired is cached with DefaultTTL again until it is stored with a high count.
type TTLPolicy struct {
	DefaultTTL          time.Duration
	PopularTTL          time.Duration
	PopularityThreshold int64
}

// DefaultTTLPolicy returns the policy used when nothing is configured: 1h, or 24h from 100 accesses on.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		DefaultTTL:          DefaultCacheTTL,
		PopularTTL:          DefaultPopularCacheTTL,
		PopularityThreshold: DefaultPopularityThreshold,
	}
}

// Determine returns PopularTTL once m reached the popularity threshold and DefaultTTL otherwise.
func (p TTLPolicy) Determine(m Mapping) time.Duration {
	if m.AccessCount() >= p.PopularityThreshold {
		return p.PopularTTL
	}
	return p.DefaultTTL
}
