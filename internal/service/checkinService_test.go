package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds-lab/eventmanager/internal/entity"
	"github.com/ds-lab/eventmanager/pkg/clock"
)

func newCheckinFixture(t *testing.T) (*fakeStore, EventService, RegistrationService, CheckinService) {
	t.Helper()
	store := newFakeStore()
	clk := clock.NewFake(testNow)
	eventSvc := NewEventService(store, nil, clk)
	regSvc := NewRegistrationService(attendeeRepo{store}, nil, clk)
	checkinSvc := NewCheckinService(attendeeRepo{store}, eventSvc)
	return store, eventSvc, regSvc, checkinSvc
}

func idRow(id int64) entity.CheckinRow {
	return entity.CheckinRow{AttendeeID: &id}
}

func emailRow(email string) entity.CheckinRow {
	return entity.CheckinRow{Email: &email}
}

func TestCheckIn(t *testing.T) {
	_, eventSvc, regSvc, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	attendee, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("ada@example.com"))
	require.NoError(t, err)

	checked, err := checkinSvc.CheckIn(context.Background(), event.ID, attendee.ID, true)
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)

	// Checking in again succeeds and leaves the flag set.
	again, err := checkinSvc.CheckIn(context.Background(), event.ID, attendee.ID, true)
	require.NoError(t, err)
	assert.True(t, again.CheckedIn)

	// The flag can be cleared too.
	cleared, err := checkinSvc.CheckIn(context.Background(), event.ID, attendee.ID, false)
	require.NoError(t, err)
	assert.False(t, cleared.CheckedIn)
}

func TestCheckInNotFound(t *testing.T) {
	_, eventSvc, _, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))

	_, err := checkinSvc.CheckIn(context.Background(), event.ID, 99, true)
	assert.ErrorIs(t, err, entity.ErrAttendeeNotFound)

	_, err = checkinSvc.CheckIn(context.Background(), 42, 1, true)
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestBulkCheckin(t *testing.T) {
	_, eventSvc, regSvc, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))

	first, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("a@example.com"))
	require.NoError(t, err)
	second, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("b@example.com"))
	require.NoError(t, err)

	report, err := checkinSvc.BulkCheckin(context.Background(), event.ID, []entity.CheckinRow{
		idRow(first.ID),
		idRow(999),
		idRow(second.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "999")

	for _, id := range []int64{first.ID, second.ID} {
		attendee, err := checkinSvc.CheckIn(context.Background(), event.ID, id, true)
		require.NoError(t, err)
		assert.True(t, attendee.CheckedIn)
	}
}

func TestBulkCheckinByEmail(t *testing.T) {
	_, eventSvc, regSvc, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	_, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("a@example.com"))
	require.NoError(t, err)

	report, err := checkinSvc.BulkCheckin(context.Background(), event.ID, []entity.CheckinRow{
		emailRow("a@example.com"),
		emailRow("ghost@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Contains(t, report.Errors[0], "ghost@example.com")
}

func TestBulkCheckinIdempotent(t *testing.T) {
	_, eventSvc, regSvc, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	attendee, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("a@example.com"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		report, err := checkinSvc.BulkCheckin(context.Background(), event.ID, []entity.CheckinRow{idRow(attendee.ID)})
		require.NoError(t, err)
		assert.Equal(t, 1, report.SuccessCount)
		assert.Equal(t, 0, report.FailureCount)
	}
}

func TestBulkCheckinMalformedRow(t *testing.T) {
	_, eventSvc, _, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))

	report, err := checkinSvc.BulkCheckin(context.Background(), event.ID, []entity.CheckinRow{{}})
	require.NoError(t, err)

	assert.Equal(t, 0, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Contains(t, report.Errors[0], "neither attendee_id nor email")
}

func TestBulkCheckinEventNotFound(t *testing.T) {
	_, _, _, checkinSvc := newCheckinFixture(t)

	report, err := checkinSvc.BulkCheckin(context.Background(), 42, []entity.CheckinRow{idRow(1)})
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
	assert.Nil(t, report)
}

func TestBulkCheckinCancellation(t *testing.T) {
	_, eventSvc, regSvc, checkinSvc := newCheckinFixture(t)

	event := createEvent(t, eventSvc, eventRequest(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	attendee, err := regSvc.RegisterAttendee(context.Background(), event.ID, contactRequest("a@example.com"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := checkinSvc.BulkCheckin(ctx, event.ID, []entity.CheckinRow{idRow(attendee.ID)})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	// No row was reached, and the report says so.
	assert.Equal(t, 0, report.SuccessCount)
	assert.Equal(t, 0, report.FailureCount)
}
