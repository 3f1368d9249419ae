// file: internals/features/payments/service/errors.go
package service

import "errors"

// Taksonomi error domain kiosk. Controller yang memetakan ke status HTTP;
// jalur webhook menelan semuanya jadi ack + log (lihat webhook.go).
var (
	ErrNotFound               = errors.New("payment not found")
	ErrDuplicateReference     = errors.New("duplicate payment reference")
	ErrInvalidTransition      = errors.New("invalid payment status transition")
	ErrInvalidScore           = errors.New("rating score must be between 1 and 5")
	ErrMissingInput           = errors.New("missing required input")
	ErrUnresolvedNotification = errors.New("notification could not be resolved to a reference")
	ErrGatewayUnavailable     = errors.New("payment gateway unavailable")
)
