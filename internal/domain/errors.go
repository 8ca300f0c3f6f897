package domain

import "errors"

// Sentinel errors shared by repositories, services and the HTTP layer.
var (
	// ErrNotFound is returned when a referenced event or RSVP does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor is not the owning artist of the event.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState is returned when a temporal constraint is violated
	// (start in the past, end not after start, RSVP on a started event).
	ErrInvalidState = errors.New("invalid state")
	// ErrAlreadyExists is returned when the user already has an RSVP for the event.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTransient is returned when the store reports a conflict or timeout that is safe to retry.
	ErrTransient = errors.New("transient store failure")
	// ErrInvalidInput is returned when a domain value is malformed (e.g. unknown category).
	ErrInvalidInput = errors.New("invalid input")
)
