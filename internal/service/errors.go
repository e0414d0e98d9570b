package service

import "errors"

// Error taxonomy mapped to HTTP status codes at the API boundary.
// Validation and not-found are fatal to the caller (no retry); unavailable
// marks an upstream failure the client may retry.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("upstream unavailable")
	ErrGatewayDisabled = errors.New("payment gateway not configured")
)
