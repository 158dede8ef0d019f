package core

import (
	"context"
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/mkarev/liveclass/internal/domain"
)

// Role of a peer transport in the negotiation handshake, fixed at creation.
// The initiator is whichever client locally observed the join event first;
// the responder is whoever receives a signal from an identity it has not
// seen yet.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// PeerTransport is one point-to-point media connection to a remote
// participant. Callbacks must be set before Start; after Close they are
// never invoked again.
type PeerTransport interface {
	// OnSignal receives locally produced negotiation payloads that must
	// be relayed to the remote side over the signaling channel.
	OnSignal(func(payload json.RawMessage))
	// OnRemoteTrack fires when the remote stream arrives.
	OnRemoteTrack(func(MediaHandle))
	// OnClosed fires once on failure or close; err is nil on clean close.
	OnClosed(func(err error))

	// Start attaches local tracks and, for an initiator, begins the
	// handshake. The transport lives until Close or ctx cancellation.
	Start(ctx context.Context) error
	// Signal feeds a remote negotiation payload into the transport.
	Signal(payload json.RawMessage) error
	// ReplaceVideoTrack swaps the outgoing video payload in place. It
	// never renegotiates identity or role bookkeeping.
	ReplaceVideoTrack(t webrtc.TrackLocal) error
	Close()
}

// TransportFactory builds one transport per remote identity.
type TransportFactory interface {
	NewTransport(peer domain.UserID, role Role, src MediaSource) (PeerTransport, error)
}
