package entity

import (
	"time"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCanceled  EventStatus = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusOngoing, EventStatusCompleted, EventStatusCanceled:
		return true
	}
	return false
}

// Closed reports whether an event in this status no longer accepts registrations.
func (s EventStatus) Closed() bool {
	return s == EventStatusCompleted || s == EventStatusCanceled
}

type Event struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	StartTime   UTCTime     `json:"start_time" db:"start_time"`
	EndTime     UTCTime     `json:"end_time" db:"end_time"`
	Location    string      `json:"location" db:"location"`
	Capacity    int         `json:"capacity" db:"capacity"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// DeriveStatus maps a stored status to the status an event carries at instant
// now. Canceled is sticky: it is set only by an administrative update and no
// amount of elapsed time changes it. Any other event at or past its end is
// completed. Otherwise the stored status is kept as-is; the scheduled→ongoing
// edge is an explicit administrative transition, never derived.
func DeriveStatus(stored EventStatus, end time.Time, now time.Time) EventStatus {
	if stored == EventStatusCanceled {
		return EventStatusCanceled
	}
	if !now.Before(end) {
		return EventStatusCompleted
	}
	return stored
}

// DerivedStatus returns the status e should carry at instant now.
func (e *Event) DerivedStatus(now time.Time) EventStatus {
	return DeriveStatus(e.Status, e.EndTime.Time, now)
}

// EventWithAttendance is an Event together with its registration counts.
type EventWithAttendance struct {
	Event
	AttendeeCount  int `json:"attendee_count"`
	AvailableSpots int `json:"available_spots"`
}
