package service

import (
	"context"

	"github.com/ds-lab/eventmanager/internal/entity"
)

type EventService interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error)
	GetEvent(ctx context.Context, id int64) (*entity.EventWithAttendance, error)
	ListEvents(ctx context.Context, filter *EventFilter) ([]*entity.EventWithAttendance, error)
	UpdateEvent(ctx context.Context, id int64, req *UpdateEventRequest) (*entity.Event, error)
}

// RegistrationService admits attendees against event capacity.
type RegistrationService interface {
	RegisterAttendee(ctx context.Context, eventID int64, req *RegisterAttendeeRequest) (*entity.Attendee, error)
	ListAttendees(ctx context.Context, eventID int64, checkedIn *bool) ([]*entity.Attendee, error)
}

// CheckinService flips attendee check-in flags, singly or in bulk.
type CheckinService interface {
	CheckIn(ctx context.Context, eventID, attendeeID int64, checkedIn bool) (*entity.Attendee, error)
	BulkCheckin(ctx context.Context, eventID int64, rows []entity.CheckinRow) (*entity.CheckinReport, error)
}

type UserService interface {
	RegisterUser(ctx context.Context, req *RegisterUserRequest) (*entity.User, error)
	Login(ctx context.Context, username, password string) (string, *entity.User, error)
}
