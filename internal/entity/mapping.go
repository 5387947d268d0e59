// Package entity defines the short code and url value objects, the Mapping aggregate binding
// them together, the events Mapping transitions produce and the errors shared by every layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Mapping binds a short code to the url it resolves to, together with access statistics.
//
// Mapping is an immutable value: transitions return a new Mapping and leave the receiver
// untouched. Two mappings are the same entity when their codes are equal, see SameAs.
type Mapping struct {
	code           Code
	content        Content
	createdAt      time.Time
	lastAccessedAt time.Time
	accessCount    int64
}

// NewMapping creates a fresh, never accessed mapping and the MappingCreated event describing it.
func NewMapping(content Content, code Code) (Mapping, Event) {
	now := time.Now().UTC()

	m := Mapping{
		code:      code,
		content:   content,
		createdAt: now,
	}

	return m, MappingCreated{
		ID:      uuid.New(),
		Code:    code,
		Content: content,
		At:      now,
	}
}

// RestoreMapping rebuilds a mapping loaded from storage or cache. It never emits events.
// A zero lastAccessedAt means the mapping was never accessed; a negative accessCount is clamped to zero.
func RestoreMapping(code Code, content Content, createdAt, lastAccessedAt time.Time, accessCount int64) Mapping {
	if accessCount < 0 {
		accessCount = 0
	}

	return Mapping{
		code:           code,
		content:        content,
		createdAt:      createdAt,
		lastAccessedAt: lastAccessedAt,
		accessCount:    accessCount,
	}
}

// RecordAccess returns a copy of m with one more access and the MappingAccessed event carrying the new total.
func (m Mapping) RecordAccess() (Mapping, Event) {
	now := time.Now().UTC()

	next := m
	next.accessCount = m.accessCount + 1
	next.lastAccessedAt = now

	return next, MappingAccessed{
		ID:               uuid.New(),
		Code:             m.code,
		At:               now,
		TotalAccessCount: next.accessCount,
	}
}

func (m Mapping) Code() Code           { return m.code }
func (m Mapping) Content() Content     { return m.content }
func (m Mapping) CreatedAt() time.Time { return m.createdAt }
func (m Mapping) AccessCount() int64   { return m.accessCount }

// LastAccessedAt returns the time of the latest recorded access and false if there was none.
func (m Mapping) LastAccessedAt() (time.Time, bool) {
	return m.lastAccessedAt, !m.lastAccessedAt.IsZero()
}

// SameAs reports whether m and other identify the same mapping, regardless of their statistics.
func (m Mapping) SameAs(other Mapping) bool {
	return m.code == other.code
}

func (m Mapping) HasBeenAccessed() bool {
	return m.accessCount > 0 && !m.lastAccessedAt.IsZero()
}

func (m Mapping) Age() time.Duration {
	return time.Since(m.createdAt)
}

// TimeSinceLastAccess falls back to the creation time for mappings that were never accessed.
func (m Mapping) TimeSinceLastAccess() time.Duration {
	if m.lastAccessedAt.IsZero() {
		return time.Since(m.createdAt)
	}
	return time.Since(m.lastAccessedAt)
}
