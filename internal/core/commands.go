package core

import (
	"encoding/json"

	"github.com/mkarev/liveclass/internal/domain"
)

// Command is one outbound message for the signaling channel.
type Command interface{ isCommand() }

type JoinRoom struct {
	SessionID domain.SessionID
	UserName  string
}

type LeaveRoom struct {
	SessionID domain.SessionID
}

// SendSignal carries a transport's negotiation payload to one peer.
type SendSignal struct {
	To      domain.UserID
	Payload json.RawMessage
}

type ToggleMedia struct {
	SessionID domain.SessionID
	Kind      TrackKind
	Enabled   bool
}

type ScreenShare struct {
	SessionID domain.SessionID
	Enabled   bool
}

type ApproveJoin struct {
	UserID domain.UserID
}

type DenyJoin struct {
	UserID domain.UserID
}

type KickUser struct {
	UserID domain.UserID
}

type SendChat struct {
	SessionID domain.SessionID
	Text      string
}

func (JoinRoom) isCommand()    {}
func (LeaveRoom) isCommand()   {}
func (SendSignal) isCommand()  {}
func (ToggleMedia) isCommand() {}
func (ScreenShare) isCommand() {}
func (ApproveJoin) isCommand() {}
func (DenyJoin) isCommand()    {}
func (KickUser) isCommand()    {}
func (SendChat) isCommand()    {}

// SignalChannel is the bidirectional message transport to the coordination
// server. Owned by the adapter; the adapter must Close() it.
type SignalChannel interface {
	Send(Command) error
	Close()
}
