package entity

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a time range starts after it ends.
var ErrInvalidRange = errors.New("invalid time range")

// CacheStatistics describes how a cache has been serving lookups.
type CacheStatistics struct {
	Hits   int64
	Misses int64
	Errors int64
	Size   int64
}

// Requests is the number of lookups that either hit or missed.
func (s CacheStatistics) Requests() int64 {
	return s.Hits + s.Misses
}

// HitRate is the share of lookups served from the cache, 0 when there were none.
func (s CacheStatistics) HitRate() float64 {
	if s.Requests() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests())
}

// ErrorRate is the share of cache operations that failed.
func (s CacheStatistics) ErrorRate() float64 {
	total := s.Requests() + s.Errors
	if total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(total)
}

// Report aggregates storage wide statistics.
type Report struct {
	TotalMappings    int64
	TotalAccessCount int64
	UnusedMappings   int64
	CreatedSince     int64
	Since            time.Time
	TopAccessed      []Mapping
}
