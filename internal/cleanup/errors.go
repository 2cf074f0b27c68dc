package cleanup

import "errors"

var (
	// ErrNotConfigured means no platform connection has been registered yet.
	ErrNotConfigured = errors.New("discord client not configured")
	// ErrNotReady means a connection is registered but is not live.
	ErrNotReady = errors.New("discord client not ready")
	// ErrNotFound is wrapped by platform errors for unknown channels or messages.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden is wrapped by platform errors for missing permissions.
	ErrForbidden = errors.New("permission denied")
)
