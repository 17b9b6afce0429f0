package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	"github.com/ds-lab/eventmanager/internal/entity"
)

type checkinService struct {
	attendeeRepo repository.AttendeeRepository
	eventService EventService
}

// NewCheckinService creates a new instance of CheckinService.
func NewCheckinService(attendeeRepo repository.AttendeeRepository, eventService EventService) CheckinService {
	return &checkinService{
		attendeeRepo: attendeeRepo,
		eventService: eventService,
	}
}

func (s *checkinService) CheckIn(ctx context.Context, eventID, attendeeID int64, checkedIn bool) (*entity.Attendee, error) {
	if _, err := s.eventService.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	if err := s.attendeeRepo.SetCheckIn(ctx, eventID, attendeeID, checkedIn); err != nil {
		return nil, err
	}

	return s.attendeeRepo.GetByID(ctx, eventID, attendeeID)
}

// BulkCheckin processes a batch of check-in rows. The event is validated once
// up front; after that no single row's problem stops the batch. Each row's
// flag flip commits on its own, so completed rows stay durable whatever
// happens later. Cancellation between rows returns the partial report
// alongside the context error.
func (s *checkinService) BulkCheckin(ctx context.Context, eventID int64, rows []entity.CheckinRow) (*entity.CheckinReport, error) {
	if _, err := s.eventService.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	report := &entity.CheckinReport{}

	for _, row := range rows {
		select {
		case <-ctx.Done():
			logrus.Warnf("Bulk check-in for event %d interrupted after %d rows",
				eventID, report.SuccessCount+report.FailureCount)
			return report, ctx.Err()
		default:
		}

		s.processRow(ctx, eventID, row, report)
	}

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"success":  report.SuccessCount,
		"failed":   report.FailureCount,
	}).Info("Bulk check-in completed")

	return report, nil
}

func (s *checkinService) processRow(ctx context.Context, eventID int64, row entity.CheckinRow, report *entity.CheckinReport) {
	var (
		attendee *entity.Attendee
		err      error
	)

	switch {
	case row.AttendeeID != nil:
		attendee, err = s.attendeeRepo.GetByID(ctx, eventID, *row.AttendeeID)
	case row.Email != nil:
		attendee, err = s.attendeeRepo.GetByEmail(ctx, eventID, *row.Email)
	default:
		report.AddFailure(row, "row has neither attendee_id nor email")
		return
	}

	if err != nil {
		if errors.Is(err, entity.ErrAttendeeNotFound) {
			report.AddFailure(row, "not found for this event")
		} else {
			report.AddFailure(row, err.Error())
		}
		return
	}

	// Re-checking-in an already-checked-in attendee is a success.
	if !attendee.CheckedIn {
		if err := s.attendeeRepo.SetCheckIn(ctx, eventID, attendee.ID, true); err != nil {
			report.AddFailure(row, err.Error())
			return
		}
	}

	report.AddSuccess()
}
