package domain

import "errors"

// Sentinel errors shared by repositories, services, and controllers.
var (
	// ErrNotFound is returned when a record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateToken is returned by inserts that collide on a unique token column.
	ErrDuplicateToken = errors.New("token already in use")
	// ErrEventDisabled is returned when invites are requested for a disabled event.
	ErrEventDisabled = errors.New("event is disabled")
	// ErrAlreadyInvited is returned when a member is already on an event's invite list.
	ErrAlreadyInvited = errors.New("member already invited")
)

// NewRecordID is the path ID that asks a save endpoint to create a record instead of updating one.
const NewRecordID = "0"

// ValidationError carries field-level messages for a rejected input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrInvalidInput.Error()
	}
	msg := e.Messages[0]
	for _, m := range e.Messages[1:] {
		msg += "; " + m
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match a ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
