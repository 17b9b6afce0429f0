package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/ds-lab/eventmanager/internal/entity"
)

// EventListFilter narrows GetAll. Zero values mean "no filter"; At matches
// events whose time window contains the instant.
type EventListFilter struct {
	Status   entity.EventStatus
	Location string
	At       time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.EventWithAttendance, error)
	GetAll(ctx context.Context, filter *EventListFilter) ([]*entity.EventWithAttendance, error)
	Update(ctx context.Context, event *entity.Event) error
	SetStatus(ctx context.Context, id int64, status entity.EventStatus) error

	// CompletePastEvents marks every scheduled or ongoing event whose end
	// lies at or before cutoff as completed, returning how many changed.
	CompletePastEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

type AttendeeRepository interface {
	// Register admits an attendee under the event's capacity. The existence,
	// closed-status, duplicate-email and capacity checks plus the insert run
	// as one transaction holding a row lock on the event, so two concurrent
	// registrations against the last remaining spot cannot both succeed.
	Register(ctx context.Context, attendee *entity.Attendee, now time.Time) error

	GetByID(ctx context.Context, eventID, attendeeID int64) (*entity.Attendee, error)
	GetByEmail(ctx context.Context, eventID int64, email string) (*entity.Attendee, error)
	SetCheckIn(ctx context.Context, eventID, attendeeID int64, checkedIn bool) error
	GetByEvent(ctx context.Context, eventID int64, checkedIn *bool) ([]*entity.Attendee, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// storeErr wraps a repository failure, tagging connectivity problems as
// entity.ErrStoreUnavailable so callers can tell transient infrastructure
// failures from semantic ones.
func storeErr(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %v: %w", op, err, entity.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
