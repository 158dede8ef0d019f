package core

import (
	"encoding/json"

	"github.com/mkarev/liveclass/internal/domain"
)

// Event is one inbound occurrence for the coordination loop. All events,
// whether decoded from the signaling channel or raised by a peer transport,
// go through a single ordered queue; handlers run to completion before the
// next event is dispatched.
type Event interface{ isEvent() }

// UserJoined: a remote participant entered the room.
type UserJoined struct {
	UserID   domain.UserID
	UserName string
	Avatar   string
	Muted    bool
	VideoOff bool
}

// UserLeft: a remote participant left or was removed by the host.
type UserLeft struct {
	UserID domain.UserID
}

// SignalReceived: an opaque negotiation payload from a remote peer.
type SignalReceived struct {
	From    domain.UserID
	Payload json.RawMessage
}

// Waiting: the server holds the local client in the waiting room.
type Waiting struct{}

// Approved: the host admitted the local client.
type Approved struct{}

// Denied: the host rejected the local client.
type Denied struct{}

// Kicked: the host removed the local client from the room.
type Kicked struct{}

// JoinRequested: someone asks for admission; meaningful on the host only.
type JoinRequested struct {
	UserID   domain.UserID
	UserName string
}

// MediaToggled: a remote participant flipped audio or video.
type MediaToggled struct {
	UserID  domain.UserID
	Kind    TrackKind
	Enabled bool
}

// ChatReceived: a lightweight in-room chat line. Not persisted.
type ChatReceived struct {
	From     domain.UserID
	UserName string
	Text     string
}

// RemoteMediaArrived is raised by a peer transport once its remote stream
// is up. It rides the same queue as signaling events to keep ordering.
type RemoteMediaArrived struct {
	UserID domain.UserID
	Media  MediaHandle
}

// TransportGone is raised by a peer transport on error or close. The
// reaction is local to that one peer; Err is nil on a clean close.
type TransportGone struct {
	UserID domain.UserID
	Err    error
}

func (UserJoined) isEvent()         {}
func (UserLeft) isEvent()           {}
func (SignalReceived) isEvent()     {}
func (Waiting) isEvent()            {}
func (Approved) isEvent()           {}
func (Denied) isEvent()             {}
func (Kicked) isEvent()             {}
func (JoinRequested) isEvent()      {}
func (MediaToggled) isEvent()       {}
func (ChatReceived) isEvent()       {}
func (RemoteMediaArrived) isEvent() {}
func (TransportGone) isEvent()      {}
