package entity

import "errors"

var (
	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrEventClosed   = errors.New("event is completed or canceled")

	// Attendee errors
	ErrAttendeeNotFound  = errors.New("attendee not found")
	ErrDuplicateAttendee = errors.New("email already registered for this event")
	ErrCapacityExceeded  = errors.New("event has reached maximum capacity")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username already registered")
	ErrUnauthorized      = errors.New("unauthorized")

	// General errors
	ErrValidation       = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)
