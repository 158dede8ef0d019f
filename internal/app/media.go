package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// MediaController owns the local media source and the screen-share
// substitution. Track replacement is purely a media-payload operation on
// top of established transports; it never touches registry bookkeeping.
type MediaController struct {
	sessionID domain.SessionID
	registry  *PeerRegistry
	channel   core.SignalChannel
	capturer  core.ScreenCapturer

	mu     sync.Mutex
	source core.MediaSource
	screen core.ScreenSource
}

func NewMediaController(sessionID domain.SessionID, registry *PeerRegistry, channel core.SignalChannel, capturer core.ScreenCapturer) *MediaController {
	return &MediaController{
		sessionID: sessionID,
		registry:  registry,
		channel:   channel,
		capturer:  capturer,
	}
}

// SetSource installs the local capture pair once acquired.
func (m *MediaController) SetSource(src core.MediaSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = src
}

func (m *MediaController) Source() core.MediaSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// ToggleAudio flips the mic flag and announces it. Returns the new state,
// false when no local source exists yet.
func (m *MediaController) ToggleAudio() bool {
	return m.toggle(core.TrackAudio)
}

// ToggleVideo flips the camera flag and announces it.
func (m *MediaController) ToggleVideo() bool {
	return m.toggle(core.TrackVideo)
}

func (m *MediaController) toggle(kind core.TrackKind) bool {
	m.mu.Lock()
	src := m.source
	m.mu.Unlock()
	if src == nil {
		return false
	}
	next := !src.Enabled(kind)
	src.SetEnabled(kind, next)
	m.announce(core.ToggleMedia{SessionID: m.sessionID, Kind: kind, Enabled: next})
	log.Info().Str("module", "app.media").Str("kind", string(kind)).Bool("enabled", next).Msg("local media toggled")
	return next
}

// StartScreenShare acquires a display surface and swaps the outgoing video
// track on every live transport. Transports are never torn down for this.
func (m *MediaController) StartScreenShare() error {
	m.mu.Lock()
	if m.screen != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	screen, err := m.capturer.Capture()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMediaAcquisition, err)
	}

	// Re-check under the lock: another start may have won while capture
	// was in flight. The established share stays, the late capture stops.
	m.mu.Lock()
	if m.screen != nil {
		m.mu.Unlock()
		screen.Stop()
		return nil
	}
	m.screen = screen
	m.mu.Unlock()

	track := screen.Track()
	m.registry.ForEachTransport(func(id domain.UserID, t core.PeerTransport) {
		if err := t.ReplaceVideoTrack(track); err != nil {
			log.Error().Err(err).Str("module", "app.media").Str("peer", string(id)).Msg("screen track swap")
		}
	})
	screen.OnEnded(func() {
		// External termination (user hit the browser/OS stop button).
		m.StopScreenShare()
	})
	m.announce(core.ScreenShare{SessionID: m.sessionID, Enabled: true})
	log.Info().Str("module", "app.media").Msg("screen share started")
	return nil
}

// StopScreenShare restores the camera track on every live transport. A
// no-op when not sharing; the swap back is skipped if no camera source was
// ever initialized.
func (m *MediaController) StopScreenShare() {
	m.mu.Lock()
	screen := m.screen
	m.screen = nil
	source := m.source
	m.mu.Unlock()
	if screen == nil {
		return
	}
	screen.Stop()

	if source != nil {
		camera := source.VideoTrack()
		m.registry.ForEachTransport(func(id domain.UserID, t core.PeerTransport) {
			if err := t.ReplaceVideoTrack(camera); err != nil {
				log.Error().Err(err).Str("module", "app.media").Str("peer", string(id)).Msg("camera track restore")
			}
		})
	}
	m.announce(core.ScreenShare{SessionID: m.sessionID, Enabled: false})
	log.Info().Str("module", "app.media").Msg("screen share stopped")
}

func (m *MediaController) Sharing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.screen != nil
}

func (m *MediaController) announce(cmd core.Command) {
	if err := m.channel.Send(cmd); err != nil {
		log.Error().Err(err).Str("module", "app.media").Msg("media state announce")
	}
}
