// Package rtc adapts pion/webrtc peer connections to the coordination
// core's transport contract.
package rtc

import "github.com/pion/webrtc/v4"

// trackSender is the slice of *webrtc.RTPSender the transport needs, so
// tests can swap tracks without a real sender.
type trackSender interface {
	ReplaceTrack(webrtc.TrackLocal) error
}

// peerConn abstracts *webrtc.PeerConnection for testability.
type peerConn interface {
	OnICECandidate(func(*webrtc.ICECandidate))
	OnTrack(func(*webrtc.TrackRemote, *webrtc.RTPReceiver))
	OnConnectionStateChange(func(webrtc.PeerConnectionState))
	AddTrack(webrtc.TrackLocal) (trackSender, error)
	AddICECandidate(webrtc.ICECandidateInit) error
	SetRemoteDescription(webrtc.SessionDescription) error
	SetLocalDescription(webrtc.SessionDescription) error
	CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error)
	CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error)
	Close() error
}

// connWrapper narrows AddTrack's return type to the trackSender interface.
type connWrapper struct {
	*webrtc.PeerConnection
}

var _ peerConn = (*connWrapper)(nil)

func (w *connWrapper) AddTrack(t webrtc.TrackLocal) (trackSender, error) {
	return w.PeerConnection.AddTrack(t)
}

type connBuilder interface {
	NewPeerConnection(webrtc.Configuration) (peerConn, error)
}

type pionBuilder struct{}

func (pionBuilder) NewPeerConnection(cfg webrtc.Configuration) (peerConn, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &connWrapper{pc}, nil
}
