package rtc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/mkarev/liveclass/internal/core"
)

// SampleSource is the local mic + camera pair as static sample tracks.
// Capture pipelines push into WriteAudio/WriteVideo; a disabled track
// swallows samples instead of detaching, so toggling never renegotiates.
type SampleSource struct {
	audio   *webrtc.TrackLocalStaticSample
	video   *webrtc.TrackLocalStaticSample
	audioOn atomic.Bool
	videoOn atomic.Bool
}

var _ core.MediaSource = (*SampleSource)(nil)

func NewSampleSource() (*SampleSource, error) {
	streamID := uuid.NewString()
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", streamID)
	if err != nil {
		return nil, fmt.Errorf("audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", streamID)
	if err != nil {
		return nil, fmt.Errorf("video track: %w", err)
	}
	s := &SampleSource{audio: audio, video: video}
	s.audioOn.Store(true)
	s.videoOn.Store(true)
	return s, nil
}

func (s *SampleSource) AudioTrack() webrtc.TrackLocal { return s.audio }
func (s *SampleSource) VideoTrack() webrtc.TrackLocal { return s.video }

func (s *SampleSource) SetEnabled(kind core.TrackKind, on bool) {
	switch kind {
	case core.TrackAudio:
		s.audioOn.Store(on)
	case core.TrackVideo:
		s.videoOn.Store(on)
	}
}

func (s *SampleSource) Enabled(kind core.TrackKind) bool {
	switch kind {
	case core.TrackAudio:
		return s.audioOn.Load()
	case core.TrackVideo:
		return s.videoOn.Load()
	}
	return false
}

// WriteAudio forwards one captured sample; muted audio is dropped.
func (s *SampleSource) WriteAudio(sample media.Sample) error {
	if !s.audioOn.Load() {
		return nil
	}
	return s.audio.WriteSample(sample)
}

// WriteVideo forwards one captured frame; a disabled camera is dropped.
func (s *SampleSource) WriteVideo(sample media.Sample) error {
	if !s.videoOn.Load() {
		return nil
	}
	return s.video.WriteSample(sample)
}

func (s *SampleSource) Close() {}

// ScreenSource is a display-surface capture track.
type ScreenSource struct {
	track *webrtc.TrackLocalStaticSample

	mu      sync.Mutex
	onEnded func()
	stopped bool
}

var _ core.ScreenSource = (*ScreenSource)(nil)

func (s *ScreenSource) Track() webrtc.TrackLocal { return s.track }

func (s *ScreenSource) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

// Stop ends the capture locally. The OnEnded callback does not fire; it is
// reserved for external termination.
func (s *ScreenSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// End simulates the platform ending the capture (user-driven stop). Fires
// OnEnded once.
func (s *ScreenSource) End() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	fn := s.onEnded
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// WriteFrame forwards one captured display frame.
func (s *ScreenSource) WriteFrame(sample media.Sample) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil
	}
	return s.track.WriteSample(sample)
}

// DisplayCapturer acquires display captures. The zero value produces a VP8
// sample track per capture; platform pipelines feed it frames.
type DisplayCapturer struct{}

var _ core.ScreenCapturer = DisplayCapturer{}

func (DisplayCapturer) Capture() (core.ScreenSource, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "screen", uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("screen track: %w", err)
	}
	return &ScreenSource{track: track}, nil
}
