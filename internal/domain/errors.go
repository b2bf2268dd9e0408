package domain

import (
	"errors"

	"guestcheckin/internal/ethsig"
)

// Sentinel errors. Every failure is terminal for the operation that raised it
// and leaves registry and factory state untouched.
var (
	ErrPastEventDate    = errors.New("event date must be in the future")
	ErrNotOwner         = errors.New("caller is not the owner")
	ErrInvalidOwner     = errors.New("invalid owner")
	ErrEventInactive    = errors.New("event is not active")
	ErrEventEnded       = errors.New("event has ended")
	ErrAlreadyCheckedIn = errors.New("attendee already checked in")
	ErrCapacityReached  = errors.New("event capacity reached")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrIndexOutOfRange  = errors.New("event index out of range")

	ErrInvalidSignatureLength = ethsig.ErrInvalidSignatureLength
	ErrInvalidSignatureV      = ethsig.ErrInvalidSignatureV

	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)
