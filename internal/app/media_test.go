package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

func mediaFixture(t *testing.T, capturer core.ScreenCapturer) (*MediaController, *PeerRegistry, *fakeFactory, *fakeChannel) {
	t.Helper()
	f := newFakeFactory()
	r := NewPeerRegistry(context.Background(), f, newFakeSource(), PeerHooks{})
	ch := &fakeChannel{}
	m := NewMediaController("session-1", r, ch, capturer)
	return m, r, f, ch
}

func TestToggleWithoutSourceIsFalse(t *testing.T) {
	m, _, _, ch := mediaFixture(t, &fakeCapturer{})

	assert.False(t, m.ToggleAudio())
	assert.False(t, m.ToggleVideo())
	assert.Empty(t, ch.commands())
}

func TestToggleFlipsAndAnnounces(t *testing.T) {
	m, _, _, ch := mediaFixture(t, &fakeCapturer{})
	src := newFakeSource()
	m.SetSource(src)

	assert.False(t, m.ToggleAudio())
	assert.True(t, m.ToggleAudio())

	cmds := ch.commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, core.ToggleMedia{SessionID: "session-1", Kind: core.TrackAudio, Enabled: false}, cmds[0])
	assert.Equal(t, core.ToggleMedia{SessionID: "session-1", Kind: core.TrackAudio, Enabled: true}, cmds[1])
}

func TestScreenShareSwapPreservesPeers(t *testing.T) {
	screen := &fakeScreen{track: dummyTrack{id: "screen"}}
	m, r, f, ch := mediaFixture(t, &fakeCapturer{screen: screen})
	m.SetSource(newFakeSource())

	require.NoError(t, r.EnsurePeer("p1", true))
	require.NoError(t, r.RelaySignal("p2", []byte(`{}`)))

	require.NoError(t, m.StartScreenShare())

	// Registry untouched: same size, same roles.
	assert.Equal(t, 2, r.Size())
	role, _ := r.Role("p1")
	assert.Equal(t, core.RoleInitiator, role)
	role, _ = r.Role("p2")
	assert.Equal(t, core.RoleResponder, role)

	// Only the outgoing video payload changed, on both transports.
	for _, id := range []domain.UserID{"p1", "p2"} {
		tracks := f.transport(id).replacedTracks()
		require.Len(t, tracks, 1, "peer %s", id)
		assert.Equal(t, "screen", tracks[0].ID())
		assert.Equal(t, 0, f.transport(id).closeCount())
	}

	cmds := ch.commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, core.ScreenShare{SessionID: "session-1", Enabled: true}, cmds[0])
}

func TestStopScreenShareRestoresCamera(t *testing.T) {
	screen := &fakeScreen{track: dummyTrack{id: "screen"}}
	m, r, f, ch := mediaFixture(t, &fakeCapturer{screen: screen})
	m.SetSource(newFakeSource())
	require.NoError(t, r.EnsurePeer("p1", true))
	require.NoError(t, m.StartScreenShare())

	m.StopScreenShare()

	tracks := f.transport("p1").replacedTracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "screen", tracks[0].ID())
	assert.Equal(t, "camera", tracks[1].ID())
	assert.Equal(t, 1, screen.stopped)

	cmds := ch.commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, core.ScreenShare{SessionID: "session-1", Enabled: false}, cmds[1])
}

func TestStopScreenShareWithoutShareIsNoop(t *testing.T) {
	m, _, _, ch := mediaFixture(t, &fakeCapturer{})
	m.StopScreenShare()
	assert.Empty(t, ch.commands())
}

func TestScreenShareAcquisitionFailure(t *testing.T) {
	m, _, _, ch := mediaFixture(t, &fakeCapturer{err: assert.AnError})
	m.SetSource(newFakeSource())

	err := m.StartScreenShare()
	require.ErrorIs(t, err, domain.ErrMediaAcquisition)
	assert.False(t, m.Sharing())
	assert.Empty(t, ch.commands())
}

// racingCapturer starts a second share while the first capture is still in
// flight, so the first call finds an established share when it returns.
type racingCapturer struct {
	m     *MediaController
	inner *fakeScreen
	outer *fakeScreen
	calls int
}

func (c *racingCapturer) Capture() (core.ScreenSource, error) {
	c.calls++
	if c.calls == 1 {
		_ = c.m.StartScreenShare()
		return c.outer, nil
	}
	return c.inner, nil
}

func TestOverlappingScreenShareKeepsFirstEstablished(t *testing.T) {
	f := newFakeFactory()
	r := NewPeerRegistry(context.Background(), f, newFakeSource(), PeerHooks{})
	ch := &fakeChannel{}
	capturer := &racingCapturer{
		inner: &fakeScreen{track: dummyTrack{id: "inner"}},
		outer: &fakeScreen{track: dummyTrack{id: "outer"}},
	}
	m := NewMediaController("session-1", r, ch, capturer)
	capturer.m = m
	m.SetSource(newFakeSource())

	require.NoError(t, m.StartScreenShare())

	// The share that won the window stays; the late capture is released
	// without disturbing it.
	assert.True(t, m.Sharing())
	assert.Equal(t, 0, capturer.inner.stopped)
	assert.Equal(t, 1, capturer.outer.stopped)
	require.Len(t, ch.commands(), 1)
	assert.Equal(t, core.ScreenShare{SessionID: "session-1", Enabled: true}, ch.commands()[0])
}

func TestExternalEndTriggersStop(t *testing.T) {
	screen := &fakeScreen{track: dummyTrack{id: "screen"}}
	m, _, _, _ := mediaFixture(t, &fakeCapturer{screen: screen})
	m.SetSource(newFakeSource())
	require.NoError(t, m.StartScreenShare())
	require.True(t, m.Sharing())

	// User hits the platform's stop-sharing button.
	screen.end()

	assert.False(t, m.Sharing())
	assert.Equal(t, 1, screen.stopped)
}
