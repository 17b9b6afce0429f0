package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	"github.com/ds-lab/eventmanager/internal/entity"
	"github.com/ds-lab/eventmanager/pkg/clock"
)

// CreateEventRequest represents the data needed to create an event
type CreateEventRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=255"`
	Description string         `json:"description" binding:"max=1000"`
	StartTime   entity.UTCTime `json:"start_time" binding:"required"`
	EndTime     entity.UTCTime `json:"end_time" binding:"required"`
	Location    string         `json:"location" binding:"max=255"`
	Capacity    int            `json:"capacity" binding:"required,min=1,max=100000"`
}

// UpdateEventRequest represents the data needed to update an event.
// Nil fields are left untouched.
type UpdateEventRequest struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	StartTime   *entity.UTCTime     `json:"start_time,omitempty"`
	EndTime     *entity.UTCTime     `json:"end_time,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Capacity    *int                `json:"capacity,omitempty"`
	Status      *entity.EventStatus `json:"status,omitempty"`
}

// EventFilter represents filters for listing events
type EventFilter struct {
	Status   entity.EventStatus `json:"status,omitempty"`
	Location string             `json:"location,omitempty"`
	At       time.Time          `json:"at,omitempty"`
}

// EventCache is the read-cache the event service consults before PostgreSQL.
type EventCache interface {
	GetEvent(ctx context.Context, id int64) (*entity.EventWithAttendance, error)
	SetEvent(ctx context.Context, event *entity.EventWithAttendance) error
	DeleteEvent(ctx context.Context, id int64) error
}

type eventService struct {
	eventRepo repository.EventRepository
	cache     EventCache
	clock     clock.Clock
}

// NewEventService creates a new instance of EventService. cache may be nil
// when Redis is not configured.
func NewEventService(eventRepo repository.EventRepository, cache EventCache, clk clock.Clock) EventService {
	return &eventService{
		eventRepo: eventRepo,
		cache:     cache,
		clock:     clk,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error) {
	now := s.clock.Now()
	if !req.EndTime.After(now) {
		return nil, fmt.Errorf("event end time must be in the future: %w", entity.ErrValidation)
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive: %w", entity.ErrValidation)
	}

	event := &entity.Event{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   entity.NewUTCTime(req.StartTime.Time),
		EndTime:     entity.NewUTCTime(req.EndTime.Time),
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      entity.EventStatusScheduled,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*entity.EventWithAttendance, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetEvent(ctx, id); err == nil {
			s.refreshStatus(ctx, cached)
			return cached, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(ctx, event)

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			logrus.Warnf("Failed to cache event %d: %v", id, err)
		}
	}

	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter *EventFilter) ([]*entity.EventWithAttendance, error) {
	var repoFilter *repository.EventListFilter
	if filter != nil {
		repoFilter = &repository.EventListFilter{
			Status:   filter.Status,
			Location: filter.Location,
			At:       filter.At,
		}
	}

	events, err := s.eventRepo.GetAll(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	for _, event := range events {
		s.refreshStatus(ctx, event)
	}

	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int64, req *UpdateEventRequest) (*entity.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(ctx, existing)

	event := existing.Event

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartTime != nil {
		event.StartTime = entity.NewUTCTime(req.StartTime.Time)
	}
	if req.EndTime != nil {
		if !req.EndTime.After(s.clock.Now()) {
			return nil, fmt.Errorf("event end time must be in the future: %w", entity.ErrValidation)
		}
		event.EndTime = entity.NewUTCTime(req.EndTime.Time)
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		if *req.Capacity < existing.AttendeeCount {
			return nil, fmt.Errorf("cannot reduce capacity below current attendee count (%d): %w",
				existing.AttendeeCount, entity.ErrValidation)
		}
		event.Capacity = *req.Capacity
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", *req.Status, entity.ErrValidation)
		}
		event.Status = *req.Status
	}

	if err := s.eventRepo.Update(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.invalidate(ctx, id)

	return &event, nil
}

// refreshStatus passes a loaded event through the status derivation and
// persists a changed status best-effort. Reads stay correct even when the
// persist fails; the stored row catches up on the next write or sweep.
func (s *eventService) refreshStatus(ctx context.Context, event *entity.EventWithAttendance) {
	derived := event.DerivedStatus(s.clock.Now())
	if derived == event.Status {
		return
	}

	event.Status = derived
	if err := s.eventRepo.SetStatus(ctx, event.ID, derived); err != nil {
		logrus.Warnf("Failed to persist derived status for event %d: %v", event.ID, err)
		return
	}
	s.invalidate(ctx, event.ID)
}

func (s *eventService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteEvent(ctx, id); err != nil {
		logrus.Warnf("Failed to invalidate cached event %d: %v", id, err)
	}
}
