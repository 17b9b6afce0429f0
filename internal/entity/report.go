package entity

import (
	"fmt"
	"strconv"
)

// CheckinRow is a single row of a bulk check-in batch. An attendee is
// identified by either its id or its registration email; the id wins when a
// row carries both. A row with neither is malformed and counts as a failure.
type CheckinRow struct {
	AttendeeID *int64  `json:"attendee_id,omitempty"`
	Email      *string `json:"email,omitempty"`

	// Raw preserves an unparseable key from batch inputs such as CSV, so a
	// failure message can still name the offending value.
	Raw string `json:"-"`
}

// Key returns the identifier the row was keyed by, for failure messages.
func (r CheckinRow) Key() string {
	if r.AttendeeID != nil {
		return strconv.FormatInt(*r.AttendeeID, 10)
	}
	if r.Email != nil {
		return *r.Email
	}
	if r.Raw != "" {
		return r.Raw
	}
	return "<missing key>"
}

// CheckinReport is the outcome of a bulk check-in batch. Errors holds one
// human-readable message per failed row, in batch order.
type CheckinReport struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
}

func (r *CheckinReport) AddSuccess() {
	r.SuccessCount++
}

func (r *CheckinReport) AddFailure(row CheckinRow, reason string) {
	r.FailureCount++
	r.Errors = append(r.Errors, fmt.Sprintf("attendee %s: %s", row.Key(), reason))
}
