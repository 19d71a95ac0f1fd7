package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUnsupported       = errors.New("capability not supported")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnavailable       = errors.New("unavailable")
	ErrTimeout           = errors.New("timed out")
	ErrNoFix             = errors.New("no location fix")
	ErrNoPhoto           = errors.New("no accepted photo")
	ErrNoPendingFrame    = errors.New("no pending frame")
	ErrCameraClosed      = errors.New("camera not active")
	ErrActionNotAllowed  = errors.New("action not allowed")
	ErrDriverUnavailable = errors.New("device driver unavailable")
)
