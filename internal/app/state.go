package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// Lifecycle of the local client within one session. A fresh join restarts
// the whole machine from Lobby; nothing transitions out of Terminated.
type Lifecycle int32

const (
	StateLobby Lifecycle = iota
	StateWaiting
	StateActive
	StateTerminated
)

func (l Lifecycle) String() string {
	switch l {
	case StateLobby:
		return "lobby"
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// ParticipantState is the live per-user record. Owned exclusively here.
type ParticipantState struct {
	UserID      domain.UserID
	DisplayName string
	Avatar      string
	AudioOn     bool
	VideoOn     bool
	Media       *core.MediaHandle
}

// ParticipantDTO is a read-only view for APIs (no transport fields).
type ParticipantDTO struct {
	ID       domain.UserID `json:"id"`
	Name     string        `json:"name"`
	AudioOn  bool          `json:"audio_on"`
	VideoOn  bool          `json:"video_on"`
	HasMedia bool          `json:"has_media"`
}

// RoomState is the authoritative view of "who is in the room, in what
// state", built purely from consumed events. Membership is established by
// join events only; updates for unknown identities are dropped, never
// buffered or turned into an implicit join.
type RoomState struct {
	session *domain.Session
	self    domain.UserID

	mu           sync.RWMutex
	state        Lifecycle
	participants map[domain.UserID]*ParticipantState
}

func NewRoomState(session *domain.Session, self domain.UserID) *RoomState {
	return &RoomState{
		session:      session,
		self:         self,
		state:        StateLobby,
		participants: make(map[domain.UserID]*ParticipantState),
	}
}

func (s *RoomState) Session() *domain.Session { return s.session }
func (s *RoomState) Self() domain.UserID      { return s.self }

func (s *RoomState) State() Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SubmitJoin validates the join precondition and advances the machine. A
// host must have local capture ready before joining; a regular participant
// needs none. The caller sends the join command, not the state machine.
func (s *RoomState) SubmitJoin(hasLocalMedia bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLobby {
		return fmt.Errorf("%w: join from %s", domain.ErrPrecondition, s.state)
	}
	if s.session.IsHost(s.self) && !hasLocalMedia {
		return fmt.Errorf("%w: host joined without local media", domain.ErrPrecondition)
	}
	if s.session.IsHost(s.self) || !s.session.WaitingRoomEnabled {
		s.transition(StateActive)
	}
	// Otherwise stay in Lobby until the server parks us in the waiting
	// room or admits us directly.
	return nil
}

// OnRemoteJoined is an idempotent upsert. A duplicate join for a present
// identity is a no-op merge; it must not erase an attached media handle.
func (s *RoomState) OnRemoteJoined(id domain.UserID, name, avatar string, audioOn, videoOn bool) {
	if id == s.self || id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; ok {
		log.Debug().Str("module", "app.state").Str("user", string(id)).Msg("duplicate join merged")
		return
	}
	s.participants[id] = &ParticipantState{
		UserID:      id,
		DisplayName: s.session.ResolveName(id, name),
		Avatar:      avatar,
		AudioOn:     audioOn,
		VideoOn:     videoOn,
	}
	log.Info().Str("module", "app.state").Str("user", string(id)).Msg("participant joined")
}

func (s *RoomState) OnRemoteLeft(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return
	}
	delete(s.participants, id)
	log.Info().Str("module", "app.state").Str("user", string(id)).Msg("participant left")
}

// OnMediaToggle updates flags for an existing participant only. An update
// for a not-yet-joined identity is dropped.
func (s *RoomState) OnMediaToggle(id domain.UserID, kind core.TrackKind, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		log.Debug().Str("module", "app.state").Str("user", string(id)).Msg("media toggle for unknown identity dropped")
		return
	}
	switch kind {
	case core.TrackAudio:
		p.AudioOn = enabled
	case core.TrackVideo:
		p.VideoOn = enabled
	}
}

// AttachMedia records the remote stream handle once a transport delivers
// it. Dropped for identities with no roster entry.
func (s *RoomState) AttachMedia(id domain.UserID, m core.MediaHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		log.Debug().Str("module", "app.state").Str("user", string(id)).Msg("media for unknown identity dropped")
		return
	}
	p.Media = &m
}

func (s *RoomState) OnWaiting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLobby {
		s.transition(StateWaiting)
	}
}

func (s *RoomState) OnApproved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateWaiting {
		s.transition(StateActive)
	}
}

func (s *RoomState) OnDenied() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateWaiting {
		s.terminate()
	}
}

func (s *RoomState) OnKicked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		s.terminate()
	}
}

// Terminate handles an explicit local leave, valid from any live state.
func (s *RoomState) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTerminated {
		s.terminate()
	}
}

func (s *RoomState) terminate() {
	s.participants = make(map[domain.UserID]*ParticipantState)
	s.transition(StateTerminated)
}

func (s *RoomState) transition(to Lifecycle) {
	from := s.state
	s.state = to
	log.Info().Str("module", "app.state").Str("from", from.String()).Str("to", to.String()).Msg("lifecycle transition")
}

func (s *RoomState) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

// Participant returns a copy of one live record.
func (s *RoomState) Participant(id domain.UserID) (ParticipantState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return ParticipantState{}, false
	}
	return *p, true
}

func (s *RoomState) Snapshot() []ParticipantDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ParticipantDTO, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, ParticipantDTO{
			ID:       p.UserID,
			Name:     p.DisplayName,
			AudioOn:  p.AudioOn,
			VideoOn:  p.VideoOn,
			HasMedia: p.Media != nil,
		})
	}
	return out
}
