package core

import "github.com/pion/webrtc/v4"

type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// MediaHandle points at a participant's live remote media. Absent until the
// transport yields a remote stream; callers render a placeholder meanwhile.
type MediaHandle struct {
	StreamID string
	Track    *webrtc.TrackRemote
}

// MediaSource is the local capture pair (mic + camera). Owned by the media
// controller; nothing else stops or replaces its tracks directly.
type MediaSource interface {
	AudioTrack() webrtc.TrackLocal
	VideoTrack() webrtc.TrackLocal
	// SetEnabled flips the pause flag of one track. Writers consult
	// Enabled before pushing samples; the track itself stays attached.
	SetEnabled(kind TrackKind, on bool)
	Enabled(kind TrackKind) bool
	Close()
}

// ScreenSource is a display-surface capture. Terminating it externally
// (user-driven) fires the OnEnded callback.
type ScreenSource interface {
	Track() webrtc.TrackLocal
	OnEnded(func())
	Stop()
}

// ScreenCapturer acquires a display surface. Acquisition may be denied or
// cancelled by the platform.
type ScreenCapturer interface {
	Capture() (ScreenSource, error)
}
