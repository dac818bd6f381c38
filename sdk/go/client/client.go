// Package client connects to a cosmos server and keeps a local replica of
// the simulation in step with the server's command stream.
package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/cosmos/internal/core/config"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/network"
	"github.com/zeusync/cosmos/internal/core/network/transport"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems"
)

// FrameHandler observes every presented frame on the tick goroutine.
// character is unset until the server has welcomed the client and the
// character exists in frame.Cosmos.
type FrameHandler func(frame network.Frame, character models.EntityID)

// Stats is a snapshot of the client counters taken at the end of a tick.
type Stats struct {
	Frames       uint64
	Steps        uint64
	Extrapolated uint64
	Resyncs      uint64
	Character    models.GUID
	Jitter       network.JitterStats
}

// Client owns a session. Only the tick goroutine touches the session's
// cosmoi; the connection goroutine feeds the receiver, which is safe for
// concurrent use.
type Client struct {
	config  *config.Config
	log     log.Log
	session *network.Session
	input   InputSource
	onFrame FrameHandler

	conn      transport.Conn
	character atomic.Uint64

	connected int32
	closed    int32

	predicted logic.GuidEntropy
	counters  Stats
	published atomic.Pointer[Stats]
}

type Option func(*Client)

// WithInput sets where the local character's entropy comes from.
func WithInput(src InputSource) Option {
	return func(c *Client) {
		c.input = src
	}
}

func WithFrameHandler(fn FrameHandler) Option {
	return func(c *Client) {
		c.onFrame = fn
	}
}

func NewClient(cfg *config.Config, pipeline *systems.Pipeline, logger log.Log, opts ...Option) *Client {
	logger = logger.With(log.String("component", "client"))

	receiver := network.NewReceiver(
		network.NewJitterBuffer(cfg.Network.Jitter.Buffer()),
		cfg.Network.Jitter.ExtrapolateAfter,
		logger,
	)

	c := &Client{
		config:  cfg,
		log:     logger,
		session: network.NewSession(receiver, pipeline, logger),
		input:   Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.published.Store(&Stats{})

	return c
}

// Connect dials the configured server.
func (c *Client) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if !atomic.CompareAndSwapInt32(&c.connected, 0, 1) {
		return ErrAlreadyConnected
	}

	nw := c.config.Network
	c.log.Info("Connecting to server",
		log.String("addr", nw.ServerAddr),
		log.String("transport", string(nw.Transport)))

	conn, err := transport.Dial(ctx, nw.Transport, nw.ServerAddr, nw.Path)
	if err != nil {
		atomic.StoreInt32(&c.connected, 0)
		return errors.Wrap(err, "failed to connect")
	}
	c.conn = conn

	c.log.Info("Connected to server", log.String("conn_id", conn.ID().String()))
	return nil
}

// Run follows the server until ctx is cancelled or the connection drops.
func (c *Client) Run(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if atomic.LoadInt32(&c.connected) == 0 {
		return ErrNotConnected
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := transport.Feed(ctx, c.conn, c.handle, c.log); err != nil {
			return errors.Wrap(err, "connection lost")
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(c.config.Simulation.TickInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := c.Tick(ctx); err != nil {
					c.log.Warn("Failed to send input", log.Error(err))
				}
			}
		}
	})

	return g.Wait()
}

// handle takes one message off the wire.
func (c *Client) handle(data []byte) error {
	if !network.IsWelcome(data) {
		return c.session.Receiver().ReadCommand(data)
	}

	welcome, err := network.DecodeWelcome(data)
	if err != nil {
		return err
	}
	c.character.Store(uint64(welcome.Character))

	c.log.Info("Welcomed by server",
		log.Uint64("character", uint64(welcome.Character)),
		log.Uint64("seq", welcome.Seq))
	return nil
}

// Tick presents one frame and sends the input produced for it.
func (c *Client) Tick(ctx context.Context) error {
	frame := c.session.Advance(c.predicted)

	character := c.resolve(frame.Cosmos)
	if c.onFrame != nil {
		c.onFrame(frame, character)
	}
	c.record(frame)

	entropy := c.input.Next(frame.Cosmos, character)
	c.predicted = c.predict(entropy)
	if entropy.Empty() || c.conn == nil {
		return nil
	}

	data, err := network.EncodeInput(entropy)
	if err != nil {
		return err
	}
	return c.conn.Send(ctx, data)
}

func (c *Client) resolve(view *cosmos.Cosmos) models.EntityID {
	guid := c.CharacterGUID()
	if guid == models.NoGUID {
		return models.EntityID{}
	}
	id, _ := view.ByGUID(guid)
	return id
}

// predict keeps the intents of entropy for the extrapolated cosmos. Transfers
// are left to the server since replaying them is not idempotent.
func (c *Client) predict(entropy logic.GuidEntropy) logic.GuidEntropy {
	guid := c.CharacterGUID()
	if guid == models.NoGUID || len(entropy.Intents) == 0 {
		return logic.GuidEntropy{}
	}

	intents := make([]logic.GuidIntent, len(entropy.Intents))
	for i, intent := range entropy.Intents {
		intent.Subject = guid
		intents[i] = intent
	}
	return logic.GuidEntropy{Intents: intents}
}

func (c *Client) record(frame network.Frame) {
	c.counters.Frames++
	c.counters.Steps += uint64(frame.Steps)
	if frame.Extrapolated {
		c.counters.Extrapolated++
	}
	if frame.Resynced {
		c.counters.Resyncs++
	}
	c.counters.Character = c.CharacterGUID()
	c.counters.Jitter = c.session.Receiver().Buffer().Stats()

	stats := c.counters
	c.published.Store(&stats)
}

// CharacterGUID returns the GUID of the character the server assigned, or
// NoGUID before the welcome.
func (c *Client) CharacterGUID() models.GUID {
	return models.GUID(c.character.Load())
}

// Stats is safe to call from any goroutine.
func (c *Client) Stats() Stats {
	return *c.published.Load()
}

// Session returns the session. Only safe while Run is not ticking.
func (c *Client) Session() *network.Session {
	return c.session
}

func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.conn == nil {
		return nil
	}

	c.log.Info("Closing connection")
	return c.conn.Close()
}
