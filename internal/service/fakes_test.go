package service

import (
	"context"
	"sync"
	"time"

	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	"github.com/ds-lab/eventmanager/internal/entity"
)

// fakeStore is an in-memory stand-in for the PostgreSQL repositories. It
// implements the same admission semantics as the real attendee repository:
// the whole gate runs under one lock, so concurrent registrations see a
// stable count.
type fakeStore struct {
	mu             sync.Mutex
	nextEventID    int64
	nextAttendeeID int64
	events         map[int64]*entity.Event
	attendees      map[int64]*entity.Attendee
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[int64]*entity.Event),
		attendees: make(map[int64]*entity.Attendee),
	}
}

// EventRepository

func (s *fakeStore) Create(ctx context.Context, event *entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	event.ID = s.nextEventID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*entity.EventWithAttendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withAttendanceLocked(id)
}

func (s *fakeStore) withAttendanceLocked(id int64) (*entity.EventWithAttendance, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}

	count := s.countLocked(id)
	return &entity.EventWithAttendance{
		Event:          *event,
		AttendeeCount:  count,
		AvailableSpots: event.Capacity - count,
	}, nil
}

func (s *fakeStore) countLocked(eventID int64) int {
	count := 0
	for _, a := range s.attendees {
		if a.EventID == eventID {
			count++
		}
	}
	return count
}

func (s *fakeStore) GetAll(ctx context.Context, filter *repository.EventListFilter) ([]*entity.EventWithAttendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*entity.EventWithAttendance
	for id, event := range s.events {
		if filter != nil {
			if filter.Status != "" && event.Status != filter.Status {
				continue
			}
			if filter.Location != "" && event.Location != filter.Location {
				continue
			}
			if !filter.At.IsZero() {
				if event.StartTime.After(filter.At) || event.EndTime.Before(filter.At) {
					continue
				}
			}
		}
		withCount, _ := s.withAttendanceLocked(id)
		events = append(events, withCount)
	}
	return events, nil
}

func (s *fakeStore) Update(ctx context.Context, event *entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return entity.ErrEventNotFound
	}
	copied := *event
	copied.UpdatedAt = time.Now()
	s.events[event.ID] = &copied
	return nil
}

func (s *fakeStore) SetStatus(ctx context.Context, id int64, status entity.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return entity.ErrEventNotFound
	}
	event.Status = status
	return nil
}

func (s *fakeStore) CompletePastEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, event := range s.events {
		if event.Status != entity.EventStatusScheduled && event.Status != entity.EventStatusOngoing {
			continue
		}
		if !event.EndTime.After(cutoff) {
			event.Status = entity.EventStatusCompleted
			updated++
		}
	}
	return updated, nil
}

// AttendeeRepository

func (s *fakeStore) Register(ctx context.Context, attendee *entity.Attendee, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[attendee.EventID]
	if !ok {
		return entity.ErrEventNotFound
	}

	derived := entity.DeriveStatus(event.Status, event.EndTime.Time, now)
	if derived != event.Status {
		event.Status = derived
	}
	if derived.Closed() {
		return entity.ErrEventClosed
	}

	for _, existing := range s.attendees {
		if existing.EventID == attendee.EventID && existing.Email == attendee.Email {
			return entity.ErrDuplicateAttendee
		}
	}

	if s.countLocked(attendee.EventID) >= event.Capacity {
		return entity.ErrCapacityExceeded
	}

	s.nextAttendeeID++
	attendee.ID = s.nextAttendeeID
	attendee.CheckedIn = false
	attendee.CreatedAt = time.Now()
	copied := *attendee
	s.attendees[attendee.ID] = &copied
	return nil
}

func (s *fakeStore) GetAttendeeByID(ctx context.Context, eventID, attendeeID int64) (*entity.Attendee, error) {
	return s.attendeeWhere(func(a *entity.Attendee) bool {
		return a.EventID == eventID && a.ID == attendeeID
	})
}

func (s *fakeStore) GetByEmail(ctx context.Context, eventID int64, email string) (*entity.Attendee, error) {
	return s.attendeeWhere(func(a *entity.Attendee) bool {
		return a.EventID == eventID && a.Email == email
	})
}

func (s *fakeStore) attendeeWhere(match func(*entity.Attendee) bool) (*entity.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attendees {
		if match(a) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, entity.ErrAttendeeNotFound
}

func (s *fakeStore) SetCheckIn(ctx context.Context, eventID, attendeeID int64, checkedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attendees {
		if a.EventID == eventID && a.ID == attendeeID {
			a.CheckedIn = checkedIn
			return nil
		}
	}
	return entity.ErrAttendeeNotFound
}

func (s *fakeStore) GetByEvent(ctx context.Context, eventID int64, checkedIn *bool) ([]*entity.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attendees []*entity.Attendee
	for _, a := range s.attendees {
		if a.EventID != eventID {
			continue
		}
		if checkedIn != nil && a.CheckedIn != *checkedIn {
			continue
		}
		copied := *a
		attendees = append(attendees, &copied)
	}
	return attendees, nil
}

func (s *fakeStore) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(eventID), nil
}

// attendeeRepo adapts fakeStore to the AttendeeRepository interface; GetByID
// would otherwise collide with the event accessor of the same name.
type attendeeRepo struct {
	*fakeStore
}

func (r attendeeRepo) GetByID(ctx context.Context, eventID, attendeeID int64) (*entity.Attendee, error) {
	return r.GetAttendeeByID(ctx, eventID, attendeeID)
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return entity.ErrUserAlreadyExists
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// fakeCache is an in-memory EventCache.
type fakeCache struct {
	mu     sync.Mutex
	events map[int64]*entity.EventWithAttendance
}

func newFakeCache() *fakeCache {
	return &fakeCache{events: make(map[int64]*entity.EventWithAttendance)}
}

func (c *fakeCache) GetEvent(ctx context.Context, id int64) (*entity.EventWithAttendance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	event, ok := c.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (c *fakeCache) SetEvent(ctx context.Context, event *entity.EventWithAttendance) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *event
	c.events[event.ID] = &copied
	return nil
}

func (c *fakeCache) DeleteEvent(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.events, id)
	return nil
}
