package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// dummyTrack satisfies webrtc.TrackLocal for swap assertions.
type dummyTrack struct{ id string }

func (d dummyTrack) Bind(webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	return webrtc.RTPCodecParameters{}, nil
}
func (d dummyTrack) Unbind(webrtc.TrackLocalContext) error { return nil }
func (d dummyTrack) ID() string                            { return d.id }
func (d dummyTrack) RID() string                           { return "" }
func (d dummyTrack) StreamID() string                      { return "stream" }
func (d dummyTrack) Kind() webrtc.RTPCodecType             { return webrtc.RTPCodecTypeVideo }

type fakeTransport struct {
	mu       sync.Mutex
	started  bool
	closed   int
	signals  []json.RawMessage
	video    []webrtc.TrackLocal
	onSignal func(json.RawMessage)
	onTrack  func(core.MediaHandle)
	onClosed func(error)
}

func (t *fakeTransport) OnSignal(fn func(json.RawMessage))       { t.onSignal = fn }
func (t *fakeTransport) OnRemoteTrack(fn func(core.MediaHandle)) { t.onTrack = fn }
func (t *fakeTransport) OnClosed(fn func(error))                 { t.onClosed = fn }

func (t *fakeTransport) Start(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
	return nil
}

func (t *fakeTransport) Signal(payload json.RawMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.signals = append(t.signals, payload)
	return nil
}

func (t *fakeTransport) ReplaceVideoTrack(track webrtc.TrackLocal) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.video = append(t.video, track)
	return nil
}

func (t *fakeTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
}

func (t *fakeTransport) closeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) receivedSignals() []json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]json.RawMessage, len(t.signals))
	copy(out, t.signals)
	return out
}

func (t *fakeTransport) replacedTracks() []webrtc.TrackLocal {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]webrtc.TrackLocal, len(t.video))
	copy(out, t.video)
	return out
}

type fakeFactory struct {
	mu         sync.Mutex
	err        error
	transports map[domain.UserID]*fakeTransport
	roles      []core.Role
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{transports: make(map[domain.UserID]*fakeTransport)}
}

func (f *fakeFactory) NewTransport(peer domain.UserID, role core.Role, _ core.MediaSource) (core.PeerTransport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t := &fakeTransport{}
	f.transports[peer] = t
	f.roles = append(f.roles, role)
	return t, nil
}

func (f *fakeFactory) transport(peer domain.UserID) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transports[peer]
}

func (f *fakeFactory) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roles)
}

type fakeChannel struct {
	mu   sync.Mutex
	err  error
	sent []core.Command
}

func (c *fakeChannel) Send(cmd core.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, cmd)
	return nil
}

func (c *fakeChannel) Close() {}

func (c *fakeChannel) commands() []core.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Command, len(c.sent))
	copy(out, c.sent)
	return out
}

type fakeSource struct {
	mu      sync.Mutex
	audioOn bool
	videoOn bool
	video   webrtc.TrackLocal
}

func newFakeSource() *fakeSource {
	return &fakeSource{audioOn: true, videoOn: true, video: dummyTrack{id: "camera"}}
}

func (s *fakeSource) AudioTrack() webrtc.TrackLocal { return dummyTrack{id: "mic"} }
func (s *fakeSource) VideoTrack() webrtc.TrackLocal { return s.video }

func (s *fakeSource) SetEnabled(kind core.TrackKind, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == core.TrackAudio {
		s.audioOn = on
	} else {
		s.videoOn = on
	}
}

func (s *fakeSource) Enabled(kind core.TrackKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == core.TrackAudio {
		return s.audioOn
	}
	return s.videoOn
}

func (s *fakeSource) Close() {}

type fakeScreen struct {
	mu      sync.Mutex
	track   webrtc.TrackLocal
	onEnded func()
	stopped int
}

func (s *fakeScreen) Track() webrtc.TrackLocal { return s.track }

func (s *fakeScreen) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

func (s *fakeScreen) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
}

func (s *fakeScreen) end() {
	s.mu.Lock()
	fn := s.onEnded
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeCapturer struct {
	screen *fakeScreen
	err    error
}

func (c *fakeCapturer) Capture() (core.ScreenSource, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.screen, nil
}

func sessionFixture(waitingRoom bool) *domain.Session {
	return &domain.Session{
		ID:                 "session-1",
		HostID:             "host-1",
		Title:              "Algebra II",
		WaitingRoomEnabled: waitingRoom,
		Participants: []domain.User{
			{ID: "u-known", Name: "Dana"},
		},
	}
}
