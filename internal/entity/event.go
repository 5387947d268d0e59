package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event is a state transition of a Mapping. It is either MappingCreated or MappingAccessed.
type Event interface {
	EventID() uuid.UUID
	EventName() string
	MappingCode() Code
	OccurredAt() time.Time

	isEvent()
}

// MappingCreated is emitted when a new mapping is created.
type MappingCreated struct {
	ID      uuid.UUID
	Code    Code
	Content Content
	At      time.Time
}

func (e MappingCreated) EventID() uuid.UUID    { return e.ID }
func (e MappingCreated) EventName() string     { return "mapping.created" }
func (e MappingCreated) MappingCode() Code     { return e.Code }
func (e MappingCreated) OccurredAt() time.Time { return e.At }
func (MappingCreated) isEvent()                {}

// MappingAccessed is emitted every time a mapping records an access.
type MappingAccessed struct {
	ID               uuid.UUID
	Code             Code
	At               time.Time
	TotalAccessCount int64
}

func (e MappingAccessed) EventID() uuid.UUID    { return e.ID }
func (e MappingAccessed) EventName() string     { return "mapping.accessed" }
func (e MappingAccessed) MappingCode() Code     { return e.Code }
func (e MappingAccessed) OccurredAt() time.Time { return e.At }
func (MappingAccessed) isEvent()                {}

// EventLog collects events returned by Mapping transitions until they are drained.
// It is not safe for concurrent use.
type EventLog struct {
	events []Event
}

// Record appends events to the log.
func (l *EventLog) Record(events ...Event) {
	l.events = append(l.events, events...)
}

// Len returns the number of pending events.
func (l *EventLog) Len() int {
	return len(l.events)
}

// Drain returns the pending events in the order they were recorded and clears the log.
func (l *EventLog) Drain() []Event {
	events := l.events
	l.events = nil
	return events
}
