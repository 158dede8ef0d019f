package signal

import (
	"encoding/json"
	"fmt"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// Wire dialect: JSON envelopes discriminated by a "type" field, matching
// the coordination server.

func decode(data []byte) (core.Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}

	switch env.Type {
	case "user-joined":
		var p struct {
			UserID   domain.UserID `json:"userId"`
			UserName string        `json:"userName"`
			Avatar   string        `json:"avatar"`
			IsMuted  bool          `json:"isMuted"`
			VideoOff bool          `json:"isVideoOff"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return core.UserJoined{
			UserID:   p.UserID,
			UserName: p.UserName,
			Avatar:   p.Avatar,
			Muted:    p.IsMuted,
			VideoOff: p.VideoOff,
		}, nil
	case "user-left":
		var p struct {
			UserID domain.UserID `json:"userId"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return core.UserLeft{UserID: p.UserID}, nil
	case "signal":
		var p struct {
			From   domain.UserID   `json:"from"`
			Signal json.RawMessage `json:"signal"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return core.SignalReceived{From: p.From, Payload: p.Signal}, nil
	case "waiting":
		return core.Waiting{}, nil
	case "approved":
		return core.Approved{}, nil
	case "denied":
		return core.Denied{}, nil
	case "kicked":
		return core.Kicked{}, nil
	case "join-request":
		var p struct {
			UserID   domain.UserID `json:"userId"`
			UserName string        `json:"userName"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return core.JoinRequested{UserID: p.UserID, UserName: p.UserName}, nil
	case "participant-audio-toggled", "participant-video-toggled":
		var p struct {
			UserID  domain.UserID `json:"userId"`
			Enabled bool          `json:"enabled"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		kind := core.TrackAudio
		if env.Type == "participant-video-toggled" {
			kind = core.TrackVideo
		}
		return core.MediaToggled{UserID: p.UserID, Kind: kind, Enabled: p.Enabled}, nil
	case "chat":
		var p struct {
			From     domain.UserID `json:"from"`
			UserName string        `json:"userName"`
			Text     string        `json:"text"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return core.ChatReceived{From: p.From, UserName: p.UserName, Text: p.Text}, nil
	case "pong":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown signal type %q", env.Type)
	}
}

func encode(cmd core.Command) ([]byte, error) {
	switch cmd := cmd.(type) {
	case core.JoinRoom:
		return json.Marshal(struct {
			Type      string           `json:"type"`
			SessionID domain.SessionID `json:"sessionId"`
			UserName  string           `json:"userName"`
		}{"join", cmd.SessionID, cmd.UserName})
	case core.LeaveRoom:
		return json.Marshal(struct {
			Type      string           `json:"type"`
			SessionID domain.SessionID `json:"sessionId"`
		}{"leave", cmd.SessionID})
	case core.SendSignal:
		return json.Marshal(struct {
			Type   string          `json:"type"`
			To     domain.UserID   `json:"to"`
			Signal json.RawMessage `json:"signal"`
		}{"signal", cmd.To, cmd.Payload})
	case core.ToggleMedia:
		name := "toggle-audio"
		if cmd.Kind == core.TrackVideo {
			name = "toggle-video"
		}
		return json.Marshal(struct {
			Type      string           `json:"type"`
			SessionID domain.SessionID `json:"sessionId"`
			Enabled   bool             `json:"enabled"`
		}{name, cmd.SessionID, cmd.Enabled})
	case core.ScreenShare:
		return json.Marshal(struct {
			Type      string           `json:"type"`
			SessionID domain.SessionID `json:"sessionId"`
			Enabled   bool             `json:"enabled"`
		}{"screen-share", cmd.SessionID, cmd.Enabled})
	case core.ApproveJoin:
		return json.Marshal(struct {
			Type   string        `json:"type"`
			UserID domain.UserID `json:"userId"`
		}{"approve-join", cmd.UserID})
	case core.DenyJoin:
		return json.Marshal(struct {
			Type   string        `json:"type"`
			UserID domain.UserID `json:"userId"`
		}{"deny-join", cmd.UserID})
	case core.KickUser:
		return json.Marshal(struct {
			Type   string        `json:"type"`
			UserID domain.UserID `json:"userId"`
		}{"kick", cmd.UserID})
	case core.SendChat:
		return json.Marshal(struct {
			Type      string           `json:"type"`
			SessionID domain.SessionID `json:"sessionId"`
			Text      string           `json:"text"`
		}{"chat", cmd.SessionID, cmd.Text})
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}
