package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ds-lab/eventmanager/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (name, description, start_time, end_time, location, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Capacity,
		event.Status,
		now,
		now,
	).Scan(&event.ID)
	if err != nil {
		return storeErr("failed to create event", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*entity.EventWithAttendance, error) {
	query := `
		SELECT
			e.id, e.name, e.description, e.start_time, e.end_time, e.location,
			e.capacity, e.status, e.created_at, e.updated_at,
			COUNT(a.id) AS attendee_count
		FROM events e
		LEFT JOIN attendees a ON e.id = a.event_id
		WHERE e.id = $1
		GROUP BY e.id
	`

	var event entity.EventWithAttendance
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.Location,
		&event.Capacity,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.AttendeeCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrEventNotFound
		}
		return nil, storeErr("failed to get event", err)
	}

	event.AvailableSpots = event.Capacity - event.AttendeeCount
	return &event, nil
}

func (r *eventRepository) GetAll(ctx context.Context, filter *EventListFilter) ([]*entity.EventWithAttendance, error) {
	query := `
		SELECT
			e.id, e.name, e.description, e.start_time, e.end_time, e.location,
			e.capacity, e.status, e.created_at, e.updated_at,
			COUNT(a.id) AS attendee_count
		FROM events e
		LEFT JOIN attendees a ON e.id = a.event_id
	`

	var conditions []string
	var args []interface{}
	if filter != nil {
		if filter.Status != "" {
			args = append(args, filter.Status)
			conditions = append(conditions, "e.status = $"+strconv.Itoa(len(args)))
		}
		if filter.Location != "" {
			args = append(args, filter.Location)
			conditions = append(conditions, "e.location = $"+strconv.Itoa(len(args)))
		}
		if !filter.At.IsZero() {
			args = append(args, filter.At)
			n := strconv.Itoa(len(args))
			conditions = append(conditions, "e.start_time <= $"+n+" AND e.end_time >= $"+n)
		}
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " GROUP BY e.id ORDER BY e.start_time ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("failed to query events", err)
	}
	defer rows.Close()

	var events []*entity.EventWithAttendance
	for rows.Next() {
		var event entity.EventWithAttendance
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.StartTime,
			&event.EndTime,
			&event.Location,
			&event.Capacity,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
			&event.AttendeeCount,
		)
		if err != nil {
			return nil, storeErr("failed to scan event", err)
		}
		event.AvailableSpots = event.Capacity - event.AttendeeCount
		events = append(events, &event)
	}

	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, start_time = $3, end_time = $4,
		    location = $5, capacity = $6, status = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Capacity,
		event.Status,
		time.Now(),
		event.ID,
	)
	if err != nil {
		return storeErr("failed to update event", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) SetStatus(ctx context.Context, id int64, status entity.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return storeErr("failed to set event status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) CompletePastEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE end_time <= $3 AND status IN ($4, $5)
	`

	result, err := r.db.ExecContext(ctx, query,
		entity.EventStatusCompleted,
		time.Now(),
		cutoff,
		entity.EventStatusScheduled,
		entity.EventStatusOngoing,
	)
	if err != nil {
		return 0, storeErr("failed to complete past events", err)
	}

	return result.RowsAffected()
}
