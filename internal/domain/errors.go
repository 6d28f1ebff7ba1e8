package domain

import "fmt"

// ValidationError reports malformed input on a single field. Requests failing
// validation are rejected before any store operation begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that no booking request exists with the given id. The
// message carries the id and nothing else.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking request with id %d not found", e.ID)
}

// ConflictError reports a transition attempted on a booking already in a
// terminal status. Only returned when strict transitions are enabled.
type ConflictError struct {
	ID     int64
	Status RequestStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking request %d is already %s", e.ID, e.Status)
}
