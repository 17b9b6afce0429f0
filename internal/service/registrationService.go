package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	"github.com/ds-lab/eventmanager/internal/entity"
	"github.com/ds-lab/eventmanager/pkg/clock"
)

// RegisterAttendeeRequest represents the contact data of a registration.
type RegisterAttendeeRequest struct {
	FirstName   string `json:"first_name" binding:"required,min=1,max=255"`
	LastName    string `json:"last_name" binding:"required,min=1,max=255"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"max=50"`
}

type registrationService struct {
	attendeeRepo repository.AttendeeRepository
	cache        EventCache
	clock        clock.Clock
}

// NewRegistrationService creates a new instance of RegistrationService.
// cache may be nil when Redis is not configured.
func NewRegistrationService(attendeeRepo repository.AttendeeRepository, cache EventCache, clk clock.Clock) RegistrationService {
	return &registrationService{
		attendeeRepo: attendeeRepo,
		cache:        cache,
		clock:        clk,
	}
}

// RegisterAttendee admits one attendee. The atomic capacity gate itself lives
// in the repository; this layer normalizes input and keeps the cache honest.
func (s *registrationService) RegisterAttendee(ctx context.Context, eventID int64, req *RegisterAttendeeRequest) (*entity.Attendee, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", entity.ErrValidation)
	}

	attendee := &entity.Attendee{
		EventID:     eventID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}

	if err := s.attendeeRepo.Register(ctx, attendee, s.clock.Now()); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id":    eventID,
		"attendee_id": attendee.ID,
	}).Info("Attendee registered")

	// The admission changed the attendee count the cached event carries.
	if s.cache != nil {
		if err := s.cache.DeleteEvent(ctx, eventID); err != nil {
			logrus.Warnf("Failed to invalidate cached event %d: %v", eventID, err)
		}
	}

	return attendee, nil
}

func (s *registrationService) ListAttendees(ctx context.Context, eventID int64, checkedIn *bool) ([]*entity.Attendee, error) {
	attendees, err := s.attendeeRepo.GetByEvent(ctx, eventID, checkedIn)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}
