package domain

import "errors"

// Error taxonomy of the coordination core. Everything outside of it is
// swallowed at the boundary and logged, never allowed to break the room.
var (
	// ErrPrecondition: an operation was invoked before required local
	// state exists, e.g. a host joining without local media.
	ErrPrecondition = errors.New("precondition not met")
	// ErrPermission: a non-host invoked a moderation command.
	ErrPermission = errors.New("permission denied")
	// ErrMediaAcquisition: the platform denied or cancelled capture.
	ErrMediaAcquisition = errors.New("media acquisition failed")
	// ErrTransport: a single peer transport failed. Local to that peer.
	ErrTransport = errors.New("peer transport failed")
)
