package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ds-lab/eventmanager/internal/entity"
)

type attendeeRepository struct {
	db *sql.DB
}

func NewAttendeeRepository(db *sql.DB) AttendeeRepository {
	return &attendeeRepository{db: db}
}

// Register runs the full admission sequence in one transaction. The event row
// is locked FOR UPDATE first, which serializes admissions per event while
// leaving other events untouched; the checks and the insert then see a stable
// attendee count. Check order: existence, closed status, duplicate email,
// capacity.
func (r *attendeeRepository) Register(ctx context.Context, attendee *entity.Attendee, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var (
		endTime  entity.UTCTime
		status   entity.EventStatus
		capacity int
	)
	query := `SELECT end_time, status, capacity FROM events WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, attendee.EventID).Scan(&endTime, &status, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrEventNotFound
		}
		return storeErr("failed to lock event", err)
	}

	// Lazily persist a stale status while we hold the lock anyway.
	derived := entity.DeriveStatus(status, endTime.Time, now)
	if derived != status {
		query = `UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, derived, time.Now(), attendee.EventID); err != nil {
			return storeErr("failed to persist derived status", err)
		}
	}

	if derived.Closed() {
		if err := tx.Commit(); err != nil {
			return storeErr("failed to commit transaction", err)
		}
		return entity.ErrEventClosed
	}

	var emailTaken bool
	query = `SELECT EXISTS(SELECT 1 FROM attendees WHERE event_id = $1 AND email = $2)`
	err = tx.QueryRowContext(ctx, query, attendee.EventID, attendee.Email).Scan(&emailTaken)
	if err != nil {
		return storeErr("failed to check duplicate email", err)
	}
	if emailTaken {
		return entity.ErrDuplicateAttendee
	}

	var count int
	query = `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	err = tx.QueryRowContext(ctx, query, attendee.EventID).Scan(&count)
	if err != nil {
		return storeErr("failed to count attendees", err)
	}
	if count >= capacity {
		return entity.ErrCapacityExceeded
	}

	query = `
		INSERT INTO attendees (event_id, first_name, last_name, email, phone_number, checked_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	createdAt := time.Now()
	err = tx.QueryRowContext(ctx, query,
		attendee.EventID,
		attendee.FirstName,
		attendee.LastName,
		attendee.Email,
		attendee.PhoneNumber,
		false,
		createdAt,
	).Scan(&attendee.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateAttendee
		}
		return storeErr("failed to insert attendee", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}

	attendee.CheckedIn = false
	attendee.CreatedAt = createdAt
	return nil
}

func (r *attendeeRepository) GetByID(ctx context.Context, eventID, attendeeID int64) (*entity.Attendee, error) {
	query := `
		SELECT id, event_id, first_name, last_name, email, phone_number, checked_in, created_at
		FROM attendees
		WHERE event_id = $1 AND id = $2
	`
	return r.getOne(ctx, query, eventID, attendeeID)
}

func (r *attendeeRepository) GetByEmail(ctx context.Context, eventID int64, email string) (*entity.Attendee, error) {
	query := `
		SELECT id, event_id, first_name, last_name, email, phone_number, checked_in, created_at
		FROM attendees
		WHERE event_id = $1 AND email = $2
	`
	return r.getOne(ctx, query, eventID, email)
}

func (r *attendeeRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Attendee, error) {
	var attendee entity.Attendee
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&attendee.ID,
		&attendee.EventID,
		&attendee.FirstName,
		&attendee.LastName,
		&attendee.Email,
		&attendee.PhoneNumber,
		&attendee.CheckedIn,
		&attendee.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrAttendeeNotFound
		}
		return nil, storeErr("failed to get attendee", err)
	}
	return &attendee, nil
}

func (r *attendeeRepository) SetCheckIn(ctx context.Context, eventID, attendeeID int64, checkedIn bool) error {
	query := `UPDATE attendees SET checked_in = $1 WHERE event_id = $2 AND id = $3`

	result, err := r.db.ExecContext(ctx, query, checkedIn, eventID, attendeeID)
	if err != nil {
		return storeErr("failed to set check-in flag", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrAttendeeNotFound
	}

	return nil
}

func (r *attendeeRepository) GetByEvent(ctx context.Context, eventID int64, checkedIn *bool) ([]*entity.Attendee, error) {
	query := `
		SELECT id, event_id, first_name, last_name, email, phone_number, checked_in, created_at
		FROM attendees
		WHERE event_id = $1
	`
	args := []interface{}{eventID}
	if checkedIn != nil {
		query += " AND checked_in = $2"
		args = append(args, *checkedIn)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("failed to query attendees", err)
	}
	defer rows.Close()

	var attendees []*entity.Attendee
	for rows.Next() {
		var attendee entity.Attendee
		err := rows.Scan(
			&attendee.ID,
			&attendee.EventID,
			&attendee.FirstName,
			&attendee.LastName,
			&attendee.Email,
			&attendee.PhoneNumber,
			&attendee.CheckedIn,
			&attendee.CreatedAt,
		)
		if err != nil {
			return nil, storeErr("failed to scan attendee", err)
		}
		attendees = append(attendees, &attendee)
	}

	return attendees, rows.Err()
}

func (r *attendeeRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, storeErr("failed to count attendees", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
