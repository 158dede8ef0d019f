// Package orch wires the coordination components behind one strictly
// ordered inbound event queue. Every state mutation happens on the loop
// goroutine; adapters only enqueue.
package orch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/app"
	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// TerminationReason tells the UI why the session ended.
type TerminationReason string

const (
	ReasonLeft   TerminationReason = "left"
	ReasonDenied TerminationReason = "denied"
	ReasonKicked TerminationReason = "kicked"
)

// Orchestrator is the session-scoped coordination engine: one instance per
// active session, created on room load and discarded on leave.
type Orchestrator struct {
	State     *app.RoomState
	Peers     *app.PeerRegistry
	Admission *app.AdmissionQueue
	Media     *app.MediaController

	session *domain.Session
	self    domain.UserID
	channel core.SignalChannel
	events  chan core.Event

	// departed tracks identities removed by leave or kick, so a stray
	// signal cannot silently re-create their transport. Loop-owned.
	departed map[domain.UserID]struct{}

	onChat       func(from domain.UserID, name, text string)
	onTerminated func(TerminationReason)
}

type Config struct {
	Session   *domain.Session
	Self      domain.UserID
	Channel   core.SignalChannel
	Factory   core.TransportFactory
	Source    core.MediaSource
	Capturer  core.ScreenCapturer
	QueueSize int
}

func New(ctx context.Context, cfg Config) *Orchestrator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	o := &Orchestrator{
		session:  cfg.Session,
		self:     cfg.Self,
		channel:  cfg.Channel,
		events:   make(chan core.Event, cfg.QueueSize),
		departed: make(map[domain.UserID]struct{}),
	}
	o.State = app.NewRoomState(cfg.Session, cfg.Self)
	o.Peers = app.NewPeerRegistry(ctx, cfg.Factory, cfg.Source, app.PeerHooks{
		OnOutboundSignal: func(to domain.UserID, payload json.RawMessage) {
			if err := cfg.Channel.Send(core.SendSignal{To: to, Payload: payload}); err != nil {
				log.Error().Err(err).Str("module", "orch").Str("peer", string(to)).Msg("outbound signal send")
			}
		},
		OnRemoteMedia: func(id domain.UserID, m core.MediaHandle) {
			o.Enqueue(core.RemoteMediaArrived{UserID: id, Media: m})
		},
		OnTransportGone: func(id domain.UserID, err error) {
			o.Enqueue(core.TransportGone{UserID: id, Err: err})
		},
	})
	o.Admission = app.NewAdmissionQueue(cfg.Session, cfg.Self, cfg.Channel)
	o.Media = app.NewMediaController(cfg.Session.ID, o.Peers, cfg.Channel, cfg.Capturer)
	if cfg.Source != nil {
		o.Media.SetSource(cfg.Source)
	}
	return o
}

// OnChat registers the chat sink. Lines are delivered in queue order.
func (o *Orchestrator) OnChat(fn func(from domain.UserID, name, text string)) { o.onChat = fn }

// OnTerminated registers the forced-exit notice for denied/kicked flows.
func (o *Orchestrator) OnTerminated(fn func(TerminationReason)) { o.onTerminated = fn }

// Enqueue pushes one event onto the ordered queue without blocking. This
// is the path for transport callbacks, where blocking can deadlock the
// close chain (RemovePeer -> Close -> OnClosed -> Enqueue). A full queue
// drops the event, and a dropped user-left leaves the roster stale until
// termination; callers that can afford to wait use Submit instead.
func (o *Orchestrator) Enqueue(ev core.Event) {
	select {
	case o.events <- ev:
	default:
		log.Warn().Str("module", "orch").Type("event", ev).Msg("event queue full, dropped")
	}
}

// Submit blocks until the event is queued, so nothing is ever lost. Meant
// for the signaling read pump; never call it from a transport callback.
func (o *Orchestrator) Submit(ev core.Event) {
	o.events <- ev
}

// Run consumes the queue until ctx is cancelled. Handlers run to
// completion one at a time, which is what makes the idempotent upserts in
// the state machine and registry sufficient without extra locking.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-o.events:
			o.dispatch(ev)
		}
	}
}

// SubmitJoin validates the join precondition and announces the join.
func (o *Orchestrator) SubmitJoin(userName string) error {
	if err := o.State.SubmitJoin(o.Media.Source() != nil); err != nil {
		return err
	}
	if err := o.channel.Send(core.JoinRoom{SessionID: o.session.ID, UserName: userName}); err != nil {
		return fmt.Errorf("join announce: %w", err)
	}
	return nil
}

// Leave terminates the local session: announces the leave, tears down
// every transport and clears the admission queue.
func (o *Orchestrator) Leave() {
	if o.State.State() == app.StateTerminated {
		return
	}
	if err := o.channel.Send(core.LeaveRoom{SessionID: o.session.ID}); err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("leave announce")
	}
	o.teardown(ReasonLeft)
}

// SendChat relays a chat line to the room.
func (o *Orchestrator) SendChat(text string) error {
	return o.channel.Send(core.SendChat{SessionID: o.session.ID, Text: text})
}

// Snapshot is the read-only view served by the status endpoint.
type Snapshot struct {
	SessionID    domain.SessionID     `json:"session_id"`
	State        string               `json:"state"`
	IsHost       bool                 `json:"is_host"`
	Participants []app.ParticipantDTO `json:"participants"`
	PendingJoins int                  `json:"pending_joins"`
	Peers        int                  `json:"peers"`
	ScreenShare  bool                 `json:"screen_share"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	return Snapshot{
		SessionID:    o.session.ID,
		State:        o.State.State().String(),
		IsHost:       o.session.IsHost(o.self),
		Participants: o.State.Snapshot(),
		PendingJoins: o.Admission.Len(),
		Peers:        o.Peers.Size(),
		ScreenShare:  o.Media.Sharing(),
	}
}

func (o *Orchestrator) teardown(reason TerminationReason) {
	o.State.Terminate()
	o.Peers.Close()
	o.Admission.Clear()
	if o.onTerminated != nil {
		o.onTerminated(reason)
	}
	log.Info().Str("module", "orch").Str("reason", string(reason)).Msg("session terminated")
}
