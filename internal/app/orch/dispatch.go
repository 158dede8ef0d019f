package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/app"
	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

func (o *Orchestrator) dispatch(ev core.Event) {
	switch ev := ev.(type) {
	case core.UserJoined:
		o.onUserJoined(ev)
	case core.UserLeft:
		o.onUserLeft(ev)
	case core.SignalReceived:
		o.onSignal(ev)
	case core.Waiting:
		o.State.OnWaiting()
	case core.Approved:
		o.State.OnApproved()
	case core.Denied:
		if o.State.State() == app.StateWaiting {
			o.State.OnDenied()
			o.Peers.Close()
			o.Admission.Clear()
			if o.onTerminated != nil {
				o.onTerminated(ReasonDenied)
			}
		}
	case core.Kicked:
		if o.State.State() == app.StateActive {
			o.State.OnKicked()
			o.Peers.Close()
			o.Admission.Clear()
			if o.onTerminated != nil {
				o.onTerminated(ReasonKicked)
			}
		}
	case core.JoinRequested:
		o.onJoinRequested(ev)
	case core.MediaToggled:
		o.State.OnMediaToggle(ev.UserID, ev.Kind, ev.Enabled)
	case core.ChatReceived:
		if o.onChat != nil {
			o.onChat(ev.From, ev.UserName, ev.Text)
		}
	case core.RemoteMediaArrived:
		o.State.AttachMedia(ev.UserID, ev.Media)
	case core.TransportGone:
		if ev.Err != nil {
			log.Warn().Err(ev.Err).Str("module", "orch").Str("peer", string(ev.UserID)).Msg("transport failed")
		}
		o.Peers.RemovePeer(ev.UserID)
	default:
		log.Warn().Str("module", "orch").Type("event", ev).Msg("unhandled event")
	}
}

func (o *Orchestrator) onUserJoined(ev core.UserJoined) {
	if ev.UserID == o.self || ev.UserID == "" {
		return
	}
	delete(o.departed, ev.UserID)
	o.State.OnRemoteJoined(ev.UserID, ev.UserName, ev.Avatar, !ev.Muted, !ev.VideoOff)
	// Having observed the join locally, we initiate toward the newcomer.
	if err := o.Peers.EnsurePeer(ev.UserID, true); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("peer", string(ev.UserID)).Msg("ensure peer")
	}
}

func (o *Orchestrator) onUserLeft(ev core.UserLeft) {
	o.departed[ev.UserID] = struct{}{}
	o.State.OnRemoteLeft(ev.UserID)
	o.Peers.RemovePeer(ev.UserID)
}

func (o *Orchestrator) onSignal(ev core.SignalReceived) {
	if ev.From == o.self || ev.From == "" {
		return
	}
	// A signal from a departed identity must not re-create its transport;
	// only a fresh join event re-establishes the peer.
	if _, gone := o.departed[ev.From]; gone {
		log.Debug().Str("module", "orch").Str("peer", string(ev.From)).Msg("signal from departed identity dropped")
		return
	}
	if err := o.Peers.RelaySignal(ev.From, ev.Payload); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("peer", string(ev.From)).Msg("relay signal")
	}
}

func (o *Orchestrator) onJoinRequested(ev core.JoinRequested) {
	if !o.session.IsHost(o.self) {
		log.Debug().Str("module", "orch").Str("user", string(ev.UserID)).Msg("join request on non-host dropped")
		return
	}
	o.Admission.Enqueue(domain.JoinRequest{UserID: ev.UserID, UserName: ev.UserName})
}
