package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// AdmissionQueue is the host-side view over pending join requests. FIFO,
// deduplicated by user id. Approve and deny are fire-and-forget: the local
// entry is removed optimistically and never reconciled against delivery.
type AdmissionQueue struct {
	session *domain.Session
	self    domain.UserID
	channel core.SignalChannel

	mu      sync.Mutex
	pending []domain.JoinRequest
}

func NewAdmissionQueue(session *domain.Session, self domain.UserID, channel core.SignalChannel) *AdmissionQueue {
	return &AdmissionQueue{session: session, self: self, channel: channel}
}

// Enqueue appends a request unless the identity is already queued.
func (q *AdmissionQueue) Enqueue(req domain.JoinRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.pending {
		if p.UserID == req.UserID {
			return
		}
	}
	q.pending = append(q.pending, req)
	log.Info().Str("module", "app.admission").Str("user", string(req.UserID)).Msg("join request queued")
}

func (q *AdmissionQueue) Approve(id domain.UserID) error {
	if err := q.requireHost(); err != nil {
		return err
	}
	q.remove(id)
	q.send(core.ApproveJoin{UserID: id})
	return nil
}

func (q *AdmissionQueue) Deny(id domain.UserID) error {
	if err := q.requireHost(); err != nil {
		return err
	}
	q.remove(id)
	q.send(core.DenyJoin{UserID: id})
	return nil
}

// Kick issues the command only. The roster entry goes away when the
// corresponding user-left event arrives, keeping events the single source
// of truth for membership.
func (q *AdmissionQueue) Kick(id domain.UserID) error {
	if err := q.requireHost(); err != nil {
		return err
	}
	q.send(core.KickUser{UserID: id})
	return nil
}

func (q *AdmissionQueue) Pending() []domain.JoinRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.JoinRequest, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *AdmissionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Clear drops all pending requests. Called on session termination.
func (q *AdmissionQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
}

func (q *AdmissionQueue) requireHost() error {
	if !q.session.IsHost(q.self) {
		return fmt.Errorf("%w: moderation requires host", domain.ErrPermission)
	}
	return nil
}

func (q *AdmissionQueue) remove(id domain.UserID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.pending {
		if p.UserID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

func (q *AdmissionQueue) send(cmd core.Command) {
	if err := q.channel.Send(cmd); err != nil {
		// Fire-and-forget: delivery failures are not retried.
		log.Error().Err(err).Str("module", "app.admission").Msg("moderation command send")
	}
}
