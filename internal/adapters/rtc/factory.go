package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

// Factory builds one pion-backed transport per remote identity.
type Factory struct {
	cfg     webrtc.Configuration
	builder connBuilder
}

var _ core.TransportFactory = (*Factory)(nil)

func NewFactory(stunURLs []string) *Factory {
	if len(stunURLs) == 0 {
		stunURLs = []string{"stun:stun.l.google.com:19302"}
	}
	return &Factory{
		cfg: webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: stunURLs}},
		},
		builder: pionBuilder{},
	}
}

func (f *Factory) NewTransport(peer domain.UserID, role core.Role, src core.MediaSource) (core.PeerTransport, error) {
	pc, err := f.builder.NewPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}
	return newTransport(peer, role, pc, src), nil
}
