package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckinRowKey(t *testing.T) {
	id := int64(7)
	email := "a@example.com"

	tests := []struct {
		name string
		row  CheckinRow
		want string
	}{
		{name: "id wins over email", row: CheckinRow{AttendeeID: &id, Email: &email}, want: "7"},
		{name: "email", row: CheckinRow{Email: &email}, want: "a@example.com"},
		{name: "raw fallback", row: CheckinRow{Raw: "not-a-number"}, want: "not-a-number"},
		{name: "nothing", row: CheckinRow{}, want: "<missing key>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.row.Key())
		})
	}
}

func TestCheckinReportAccumulates(t *testing.T) {
	report := &CheckinReport{}

	report.AddSuccess()
	report.AddSuccess()
	report.AddFailure(CheckinRow{Raw: "999"}, "not found for this event")

	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, []string{"attendee 999: not found for this event"}, report.Errors)
}
