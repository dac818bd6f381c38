// Package server hosts the authoritative simulation. It steps the canonical
// cosmos on a fixed tick and streams every step to its peers.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/cosmos/internal/core/config"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/network"
	"github.com/zeusync/cosmos/internal/core/network/transport"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/snapshot"
	"github.com/zeusync/cosmos/internal/core/systems"
)

type peerInput struct {
	peer    uuid.UUID
	entropy logic.GuidEntropy
}

// Server owns the canonical cosmos. Only the tick goroutine touches it;
// connection goroutines hand joins, leaves and inputs over under mu.
type Server struct {
	config      *config.Config
	log         log.Log
	listener    transport.Listener
	broadcaster *transport.Broadcaster
	pipeline    *systems.Pipeline

	cosmos     *cosmos.Cosmos
	seq        uint64
	characters map[uuid.UUID]models.EntityID
	spawned    int
	// resync forces a heartbeat after one could not be encoded, so peers
	// that joined or saw a leave still get a baseline.
	resync bool

	encodeHeartbeat func(*cosmos.Cosmos) ([]byte, error)

	mu      sync.Mutex
	joins   []transport.Conn
	leaves  []uuid.UUID
	pending []peerInput

	running    int32
	closed     int32
	heartbeats uint64
	checksum   uint64
	published  atomic.Pointer[Stats]
}

// Stats is a snapshot of the server counters taken at the end of a tick.
type Stats struct {
	Seq        uint64
	Peers      int
	Entities   int
	Heartbeats uint64
	Checksum   uint64
}

func NewServer(cfg *config.Config, listener transport.Listener, pipeline *systems.Pipeline, logger log.Log) *Server {
	c := cosmos.New()
	c.ChangeCommon(func(common *cosmos.CommonState) cosmos.ChangerResult {
		*common = cfg.Simulation.CommonState()
		return cosmos.KeepCaches
	})
	PopulateWorld(c)

	logger = logger.With(log.String("component", "server"))

	s := &Server{
		config:      cfg,
		log:         logger,
		listener:    listener,
		broadcaster: transport.NewBroadcaster(cfg.Network.SendTimeout, logger),
		pipeline:    pipeline,
		cosmos:      c,
		characters:  make(map[uuid.UUID]models.EntityID),

		encodeHeartbeat: snapshot.Encode,
	}
	s.publish()

	return s
}

// Run accepts peers and steps the simulation until ctx is cancelled. The
// listener is closed on return, so a server runs only once.
func (s *Server) Run(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)
	defer atomic.StoreInt32(&s.closed, 1)

	s.log.Info("Server started",
		log.String("addr", s.listener.Addr().String()),
		log.Int("tick_rate_hz", s.config.Simulation.TickRateHz),
		log.Duration("tick_interval", s.config.Simulation.TickInterval()),
		log.Int("entities", s.cosmos.Count()))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.acceptLoop(ctx, g)
	})

	g.Go(func() error {
		ticker := time.NewTicker(s.config.Simulation.TickInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		s.broadcaster.Close()
		if err := s.listener.Close(); err != nil {
			s.log.Warn("Failed to close listener", log.Error(err))
		}
		return nil
	})

	if addr := s.config.Network.StatusAddr; addr != "" {
		g.Go(func() error {
			return s.ServeStatus(ctx, addr)
		})
	}

	err := g.Wait()
	s.log.Info("Server stopped", log.Uint64("seq", s.seq))
	return err
}

func (s *Server) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("Failed to accept connection", log.Error(err))
			continue
		}

		s.mu.Lock()
		s.joins = append(s.joins, conn)
		s.mu.Unlock()

		g.Go(func() error {
			s.readLoop(ctx, conn)
			return nil
		})
	}
}

func (s *Server) readLoop(ctx context.Context, conn transport.Conn) {
	err := transport.Feed(ctx, conn, func(data []byte) error {
		entropy, err := network.DecodeInput(data)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.pending = append(s.pending, peerInput{peer: conn.ID(), entropy: entropy})
		s.mu.Unlock()
		return nil
	}, s.log)
	if err != nil {
		s.log.Debug("Peer connection ended", log.String("peer_id", conn.ID().String()), log.Error(err))
	}

	s.mu.Lock()
	s.leaves = append(s.leaves, conn.ID())
	s.mu.Unlock()
}

// Tick runs one step of the canonical cosmos and streams it.
func (s *Server) Tick(ctx context.Context) {
	s.mu.Lock()
	joins, leaves, pending := s.joins, s.leaves, s.pending
	s.joins, s.leaves, s.pending = nil, nil, nil
	s.mu.Unlock()

	// Structural changes happen outside of entropy, so peers can only learn
	// about them from a heartbeat.
	heartbeat := s.resync || len(joins) > 0 || len(leaves) > 0 || s.seq%uint64(s.config.Simulation.HeartbeatEvery) == 0

	for _, id := range leaves {
		s.despawn(id)
	}

	welcomes := make(map[uuid.UUID][]byte, len(joins))
	for _, conn := range joins {
		character := SpawnCharacter(s.cosmos, s.spawned)
		s.spawned++
		s.characters[conn.ID()] = character
		s.broadcaster.Add(conn)
		welcomes[conn.ID()] = network.EncodeWelcome(network.Welcome{Character: s.cosmos.GUID(character), Seq: s.seq})
	}

	cmd := network.Command{Seq: s.seq, Entropy: s.collect(pending)}

	if heartbeat {
		data, err := s.encodeHeartbeat(s.cosmos)
		if err != nil {
			s.log.Error("Failed to encode heartbeat, retrying next tick", log.Uint64("seq", s.seq), log.Error(err))
			s.resync = true
		} else {
			cmd.Heartbeat = data
			s.resync = false
			s.heartbeats++
			s.logChecksum()
		}
	}

	s.pipeline.Advance(s.cosmos, cmd.Entropy.MapToIDs(s.cosmos), nil, nil)
	s.seq++

	data, err := network.EncodeCommand(cmd)
	if err != nil {
		s.log.Error("Failed to encode command", log.Uint64("seq", cmd.Seq), log.Error(err))
		return
	}

	for id, welcome := range welcomes {
		_ = s.broadcaster.Send(ctx, id, welcome)
	}
	s.broadcaster.Broadcast(ctx, data)

	s.publish()
}

// despawn removes the peer's character together with everything it carries.
func (s *Server) despawn(peer uuid.UUID) {
	s.broadcaster.Remove(peer)

	character, ok := s.characters[peer]
	if !ok {
		return
	}
	delete(s.characters, peer)

	for _, id := range s.cosmos.Descendants(character) {
		s.cosmos.DeleteEntity(id)
	}
	s.cosmos.DeleteEntity(character)
}

// collect merges peer inputs in arrival order. Intents are stamped with the
// sender's character; transfers are kept only when they touch items the
// sender holds or that lie in the world.
func (s *Server) collect(inputs []peerInput) logic.GuidEntropy {
	var out logic.GuidEntropy

	for _, in := range inputs {
		character, ok := s.characters[in.peer]
		if !ok || !s.cosmos.Alive(character) {
			continue
		}
		guid := s.cosmos.GUID(character)

		for _, intent := range in.entropy.Intents {
			intent.Subject = guid
			out.Intents = append(out.Intents, intent)
		}

		for _, transfer := range in.entropy.Transfers {
			if s.allowed(character, transfer) {
				out.Transfers = append(out.Transfers, transfer)
			}
		}
	}

	return out
}

func (s *Server) allowed(character models.EntityID, t logic.GuidTransfer) bool {
	item, ok := s.cosmos.ByGUID(t.Item)
	if !ok {
		return false
	}
	if owner := s.cosmos.OwningCapability(item); owner != item && owner != character {
		return false
	}

	if t.TargetContainer == models.NoGUID {
		return true
	}
	container, ok := s.cosmos.ByGUID(t.TargetContainer)
	if !ok {
		return false
	}
	return container == character || s.cosmos.OwningCapability(container) == character
}

func (s *Server) logChecksum() {
	sum, err := snapshot.Checksum(s.cosmos)
	if err != nil {
		s.log.Warn("Failed to checksum cosmos", log.Error(err))
		return
	}
	s.checksum = sum
	s.log.Debug("Heartbeat",
		log.Uint64("seq", s.seq),
		log.Uint64("checksum", sum),
		log.Int("entities", s.cosmos.Count()))
}

func (s *Server) publish() {
	s.published.Store(&Stats{
		Seq:        s.seq,
		Peers:      s.broadcaster.Len(),
		Entities:   s.cosmos.Count(),
		Heartbeats: s.heartbeats,
		Checksum:   s.checksum,
	})
}

// Stats is safe to call from any goroutine.
func (s *Server) Stats() Stats {
	return *s.published.Load()
}

// Cosmos returns the canonical cosmos. Only safe while Run is not ticking.
func (s *Server) Cosmos() *cosmos.Cosmos {
	return s.cosmos
}

// Character returns the entity controlled by peer. Same caveat as Cosmos.
func (s *Server) Character(peer uuid.UUID) (models.EntityID, bool) {
	id, ok := s.characters[peer]
	return id, ok
}
