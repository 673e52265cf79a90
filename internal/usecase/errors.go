package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrAmbiguousCode         = errors.New("join code matches multiple tournaments")
	ErrAlreadyEnded          = errors.New("tournament already ended")
	ErrStillActive           = errors.New("tournament still active")
	ErrNotParticipant        = errors.New("not a tournament participant")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
