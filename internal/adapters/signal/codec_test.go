package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarev/liveclass/internal/core"
)

func TestDecodeUserJoined(t *testing.T) {
	ev, err := decode([]byte(`{"type":"user-joined","userId":"u-1","userName":"Ann","isMuted":true,"isVideoOff":false}`))
	require.NoError(t, err)

	joined, ok := ev.(core.UserJoined)
	require.True(t, ok)
	assert.Equal(t, "Ann", joined.UserName)
	assert.True(t, joined.Muted)
	assert.False(t, joined.VideoOff)
}

func TestDecodeSignalKeepsPayloadOpaque(t *testing.T) {
	ev, err := decode([]byte(`{"type":"signal","from":"u-1","signal":{"kind":"offer","sdp":"v=0"}}`))
	require.NoError(t, err)

	sig, ok := ev.(core.SignalReceived)
	require.True(t, ok)
	assert.Equal(t, "u-1", string(sig.From))
	assert.JSONEq(t, `{"kind":"offer","sdp":"v=0"}`, string(sig.Payload))
}

func TestDecodeLifecycleEvents(t *testing.T) {
	cases := []struct {
		raw  string
		want core.Event
	}{
		{`{"type":"waiting"}`, core.Waiting{}},
		{`{"type":"approved"}`, core.Approved{}},
		{`{"type":"denied"}`, core.Denied{}},
		{`{"type":"kicked"}`, core.Kicked{}},
		{`{"type":"user-left","userId":"u-9"}`, core.UserLeft{UserID: "u-9"}},
		{`{"type":"join-request","userId":"u-2","userName":"Bea"}`, core.JoinRequested{UserID: "u-2", UserName: "Bea"}},
		{`{"type":"participant-audio-toggled","userId":"u-1","enabled":false}`, core.MediaToggled{UserID: "u-1", Kind: core.TrackAudio, Enabled: false}},
		{`{"type":"participant-video-toggled","userId":"u-1","enabled":true}`, core.MediaToggled{UserID: "u-1", Kind: core.TrackVideo, Enabled: true}},
		{`{"type":"chat","from":"u-1","userName":"Ann","text":"hi"}`, core.ChatReceived{From: "u-1", UserName: "Ann", Text: "hi"}},
	}
	for _, c := range cases {
		ev, err := decode([]byte(c.raw))
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.want, ev, c.raw)
	}
}

func TestDecodeUnknownTypeRejected(t *testing.T) {
	_, err := decode([]byte(`{"type":"mystery"}`))
	assert.Error(t, err)

	_, err = decode([]byte(`garbage`))
	assert.Error(t, err)
}

func TestDecodePongIsSilent(t *testing.T) {
	ev, err := decode([]byte(`{"type":"pong"}`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestEncodeCommands(t *testing.T) {
	cases := []struct {
		cmd  core.Command
		want string
	}{
		{core.JoinRoom{SessionID: "s-1", UserName: "Ann"}, `{"type":"join","sessionId":"s-1","userName":"Ann"}`},
		{core.LeaveRoom{SessionID: "s-1"}, `{"type":"leave","sessionId":"s-1"}`},
		{core.SendSignal{To: "u-2", Payload: json.RawMessage(`{"kind":"answer"}`)}, `{"type":"signal","to":"u-2","signal":{"kind":"answer"}}`},
		{core.ToggleMedia{SessionID: "s-1", Kind: core.TrackAudio, Enabled: false}, `{"type":"toggle-audio","sessionId":"s-1","enabled":false}`},
		{core.ToggleMedia{SessionID: "s-1", Kind: core.TrackVideo, Enabled: true}, `{"type":"toggle-video","sessionId":"s-1","enabled":true}`},
		{core.ScreenShare{SessionID: "s-1", Enabled: true}, `{"type":"screen-share","sessionId":"s-1","enabled":true}`},
		{core.ApproveJoin{UserID: "u-2"}, `{"type":"approve-join","userId":"u-2"}`},
		{core.DenyJoin{UserID: "u-2"}, `{"type":"deny-join","userId":"u-2"}`},
		{core.KickUser{UserID: "u-2"}, `{"type":"kick","userId":"u-2"}`},
		{core.SendChat{SessionID: "s-1", Text: "hi"}, `{"type":"chat","sessionId":"s-1","text":"hi"}`},
	}
	for _, c := range cases {
		data, err := encode(c.cmd)
		require.NoError(t, err)
		assert.JSONEq(t, c.want, string(data))
	}
}
