package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// PeerHooks route transport callbacks back into the coordination loop.
// They fire from transport goroutines; implementations must only enqueue.
type PeerHooks struct {
	OnOutboundSignal func(to domain.UserID, payload json.RawMessage)
	OnRemoteMedia    func(id domain.UserID, m core.MediaHandle)
	OnTransportGone  func(id domain.UserID, err error)
}

type peerEntry struct {
	role      core.Role
	transport core.PeerTransport
}

// PeerRegistry is the sole owner of transport instances: at most one live
// transport per remote identity, created and destroyed only here. It is
// session-scoped; one instance per active session, closed on leave.
type PeerRegistry struct {
	ctx     context.Context
	factory core.TransportFactory
	source  core.MediaSource
	hooks   PeerHooks

	mu    sync.RWMutex
	peers map[domain.UserID]*peerEntry
}

func NewPeerRegistry(ctx context.Context, factory core.TransportFactory, source core.MediaSource, hooks PeerHooks) *PeerRegistry {
	return &PeerRegistry{
		ctx:     ctx,
		factory: factory,
		source:  source,
		hooks:   hooks,
		peers:   make(map[domain.UserID]*peerEntry),
	}
}

// EnsurePeer creates a transport for id unless one already exists. The
// no-op path protects against the race between a locally observed join
// event and an inbound signal arriving first: whichever came first fixed
// the role, the loser keeps it.
func (r *PeerRegistry) EnsurePeer(id domain.UserID, initiator bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(id, initiator)
}

func (r *PeerRegistry) ensureLocked(id domain.UserID, initiator bool) error {
	if _, ok := r.peers[id]; ok {
		return nil
	}
	role := core.RoleResponder
	if initiator {
		role = core.RoleInitiator
	}
	t, err := r.factory.NewTransport(id, role, r.source)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("peer", string(id)).Msg("transport create")
		return err
	}
	t.OnSignal(func(payload json.RawMessage) {
		if r.hooks.OnOutboundSignal != nil {
			r.hooks.OnOutboundSignal(id, payload)
		}
	})
	t.OnRemoteTrack(func(m core.MediaHandle) {
		if r.hooks.OnRemoteMedia != nil {
			r.hooks.OnRemoteMedia(id, m)
		}
	})
	t.OnClosed(func(err error) {
		if r.hooks.OnTransportGone != nil {
			r.hooks.OnTransportGone(id, err)
		}
	})
	if err := t.Start(r.ctx); err != nil {
		t.Close()
		log.Error().Err(err).Str("module", "app.registry").Str("peer", string(id)).Msg("transport start")
		return err
	}
	r.peers[id] = &peerEntry{role: role, transport: t}
	log.Info().Str("module", "app.registry").Str("peer", string(id)).Str("role", string(role)).Msg("peer added")
	return nil
}

// RelaySignal forwards a remote negotiation payload. First contact from an
// unseen identity makes us the responder.
func (r *PeerRegistry) RelaySignal(from domain.UserID, payload json.RawMessage) error {
	r.mu.Lock()
	if err := r.ensureLocked(from, false); err != nil {
		r.mu.Unlock()
		return err
	}
	entry := r.peers[from]
	r.mu.Unlock()

	return entry.transport.Signal(payload)
}

// RemovePeer releases the transport and drops the entry. Removing an
// absent identity, or the same one twice, is a no-op.
func (r *PeerRegistry) RemovePeer(id domain.UserID) {
	r.mu.Lock()
	entry, ok := r.peers[id]
	if ok {
		delete(r.peers, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	entry.transport.Close()
	log.Info().Str("module", "app.registry").Str("peer", string(id)).Msg("peer removed")
}

// ForEachTransport applies fn to a snapshot of the live transports, so a
// peer disappearing mid-iteration cannot disturb the walk.
func (r *PeerRegistry) ForEachTransport(fn func(id domain.UserID, t core.PeerTransport)) {
	type snap struct {
		id domain.UserID
		t  core.PeerTransport
	}
	r.mu.RLock()
	list := make([]snap, 0, len(r.peers))
	for id, e := range r.peers {
		list = append(list, snap{id: id, t: e.transport})
	}
	r.mu.RUnlock()
	for _, s := range list {
		fn(s.id, s.t)
	}
}

func (r *PeerRegistry) Role(id domain.UserID) (core.Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.peers[id]
	if !ok {
		return "", false
	}
	return e.role, true
}

func (r *PeerRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Close tears down every transport. Used on leave and kick.
func (r *PeerRegistry) Close() {
	r.mu.Lock()
	peers := r.peers
	r.peers = make(map[domain.UserID]*peerEntry)
	r.mu.Unlock()
	for id, e := range peers {
		e.transport.Close()
		log.Info().Str("module", "app.registry").Str("peer", string(id)).Msg("peer removed")
	}
}
