package entity

import (
	"time"
)

type Attendee struct {
	ID          int64     `json:"id" db:"id"`
	EventID     int64     `json:"event_id" db:"event_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CheckedIn   bool      `json:"checked_in" db:"checked_in"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
