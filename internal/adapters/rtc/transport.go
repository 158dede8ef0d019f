package rtc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// signalPayload is the opaque negotiation unit relayed through the
// signaling channel: one SDP or one trickled ICE candidate.
type signalPayload struct {
	Kind      string                   `json:"kind"` // offer | answer | candidate
	SDP       string                   `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// Transport is one point-to-point media connection backed by pion.
type Transport struct {
	peer   domain.UserID
	role   core.Role
	pc     peerConn
	source core.MediaSource

	onSignal      func(json.RawMessage)
	onRemoteTrack func(core.MediaHandle)
	onClosed      func(error)

	mu          sync.Mutex
	videoSender trackSender
	closeOnce   sync.Once
}

var _ core.PeerTransport = (*Transport)(nil)

func newTransport(peer domain.UserID, role core.Role, pc peerConn, source core.MediaSource) *Transport {
	return &Transport{peer: peer, role: role, pc: pc, source: source}
}

func (t *Transport) Role() core.Role { return t.role }

func (t *Transport) OnSignal(fn func(json.RawMessage))       { t.onSignal = fn }
func (t *Transport) OnRemoteTrack(fn func(core.MediaHandle)) { t.onRemoteTrack = fn }
func (t *Transport) OnClosed(fn func(error))                 { t.onClosed = fn }

func (t *Transport) Start(ctx context.Context) error {
	t.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		init := cand.ToJSON()
		t.emit(signalPayload{Kind: "candidate", Candidate: &init})
	})

	t.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().Str("module", "rtc").Str("peer", string(t.peer)).Str("kind", track.Kind().String()).Str("stream_id", track.StreamID()).Msg("remote track")
		if t.onRemoteTrack != nil {
			t.onRemoteTrack(core.MediaHandle{StreamID: track.StreamID(), Track: track})
		}
	})

	t.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer", string(t.peer)).Str("state", s.String()).Msg("peer state")
		switch s {
		case webrtc.PeerConnectionStateFailed:
			t.close(fmt.Errorf("%w: peer %s", domain.ErrTransport, t.peer))
		case webrtc.PeerConnectionStateClosed:
			t.close(nil)
		}
	})

	if err := t.attachLocalTracks(); err != nil {
		return err
	}

	if t.role == core.RoleInitiator {
		if err := t.negotiate(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		t.Close()
	}()
	return nil
}

func (t *Transport) attachLocalTracks() error {
	if t.source == nil {
		return nil
	}
	if audio := t.source.AudioTrack(); audio != nil {
		if _, err := t.pc.AddTrack(audio); err != nil {
			return fmt.Errorf("add audio track: %w", err)
		}
	}
	if video := t.source.VideoTrack(); video != nil {
		sender, err := t.pc.AddTrack(video)
		if err != nil {
			return fmt.Errorf("add video track: %w", err)
		}
		t.mu.Lock()
		t.videoSender = sender
		t.mu.Unlock()
	}
	return nil
}

func (t *Transport) negotiate() error {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local offer: %w", err)
	}
	t.emit(signalPayload{Kind: "offer", SDP: offer.SDP})
	return nil
}

// Signal feeds one remote negotiation payload into the connection.
func (t *Transport) Signal(raw json.RawMessage) error {
	var p signalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("bad signal payload: %w", err)
	}

	switch p.Kind {
	case "offer":
		offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: p.SDP}
		if err := t.pc.SetRemoteDescription(offer); err != nil {
			return fmt.Errorf("set remote offer: %w", err)
		}
		answer, err := t.pc.CreateAnswer(nil)
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		if err := t.pc.SetLocalDescription(answer); err != nil {
			return fmt.Errorf("set local answer: %w", err)
		}
		t.emit(signalPayload{Kind: "answer", SDP: answer.SDP})
		return nil
	case "answer":
		answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: p.SDP}
		return t.pc.SetRemoteDescription(answer)
	case "candidate":
		if p.Candidate == nil {
			return fmt.Errorf("candidate payload without candidate")
		}
		return t.pc.AddICECandidate(*p.Candidate)
	default:
		return fmt.Errorf("unknown signal kind %q", p.Kind)
	}
}

// ReplaceVideoTrack swaps the outgoing video payload in place. Nothing to
// do when this side never attached a camera.
func (t *Transport) ReplaceVideoTrack(track webrtc.TrackLocal) error {
	t.mu.Lock()
	sender := t.videoSender
	t.mu.Unlock()
	if sender == nil {
		return nil
	}
	return sender.ReplaceTrack(track)
}

func (t *Transport) Close() { t.close(nil) }

func (t *Transport) close(err error) {
	t.closeOnce.Do(func() {
		if cerr := t.pc.Close(); cerr != nil {
			log.Error().Err(cerr).Str("module", "rtc").Str("peer", string(t.peer)).Msg("close error")
		}
		if t.onClosed != nil {
			t.onClosed(err)
		}
		log.Info().Str("module", "rtc").Str("peer", string(t.peer)).Msg("transport closed")
	})
}

func (t *Transport) emit(p signalPayload) {
	if t.onSignal == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("module", "rtc").Msg("signal payload marshal")
		return
	}
	t.onSignal(data)
}
