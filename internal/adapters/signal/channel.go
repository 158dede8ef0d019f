// Package signal implements the signaling channel as a websocket client:
// a read pump decoding server events into the coordination queue and a
// write pump draining outbound commands.
package signal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("channel closed")
)

// Sink receives every decoded inbound event, in wire order.
type Sink func(core.Event)

type Options struct {
	PingPeriod time.Duration
	SendBuffer int
}

type Channel struct {
	conn *websocket.Conn
	send chan []byte
	opts Options

	mu     sync.RWMutex
	sink   Sink
	closed bool
}

var _ core.SignalChannel = (*Channel)(nil)

// Dial connects to the coordination server and starts both pumps. The
// channel lives until Close or ctx cancellation.
func Dial(ctx context.Context, url string, sink Sink, opts Options) (*Channel, error) {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		conn: conn,
		send: make(chan []byte, opts.SendBuffer),
		sink: sink,
		opts: opts,
	}
	log.Info().Str("module", "signal").Str("url", url).Msg("signaling channel connected")
	go c.writePump(ctx)
	go c.readPump(ctx)
	return c, nil
}

// SetSink installs the inbound event sink. Dial with a nil sink, build the
// consumer, then install it here; events decoded while no sink is set are
// dropped. Safe to call while the read pump is running.
func (c *Channel) SetSink(sink Sink) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

func (c *Channel) getSink() Sink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sink
}

// Send encodes one command and queues it for the write pump.
func (c *Channel) Send(cmd core.Command) error {
	data, err := encode(cmd)
	if err != nil {
		return err
	}
	return c.trySend(data)
}

func (c *Channel) trySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
	log.Info().Str("module", "signal").Msg("signaling channel closed")
}
