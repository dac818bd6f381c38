package transport

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/pkg/concurrent"
)

const maxParallelSends = 32

// Broadcaster fans messages out to every registered connection. A peer
// whose send fails is dropped and closed.
type Broadcaster struct {
	mu    sync.RWMutex
	peers map[uuid.UUID]Conn

	sendTimeout time.Duration
	log         log.Log
}

func NewBroadcaster(sendTimeout time.Duration, logger log.Log) *Broadcaster {
	return &Broadcaster{
		peers:       make(map[uuid.UUID]Conn),
		sendTimeout: sendTimeout,
		log:         logger.With(log.String("component", "broadcaster")),
	}
}

func (b *Broadcaster) Add(conn Conn) {
	b.mu.Lock()
	b.peers[conn.ID()] = conn
	b.mu.Unlock()

	b.log.Info("Peer joined", log.String("peer_id", conn.ID().String()))
}

// Remove closes and forgets the peer. It reports whether it was registered.
func (b *Broadcaster) Remove(id uuid.UUID) bool {
	b.mu.Lock()
	conn, ok := b.peers[id]
	delete(b.peers, id)
	b.mu.Unlock()

	if ok {
		_ = conn.Close()
		b.log.Info("Peer left", log.String("peer_id", id.String()))
	}
	return ok
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.peers)
}

// Peers returns the registered connection ids in a stable order.
func (b *Broadcaster) Peers() []uuid.UUID {
	b.mu.RLock()
	ids := make([]uuid.UUID, 0, len(b.peers))
	for id := range b.peers {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}

// Send delivers data to one peer.
func (b *Broadcaster) Send(ctx context.Context, id uuid.UUID, data []byte) error {
	b.mu.RLock()
	conn, ok := b.peers[id]
	b.mu.RUnlock()
	if !ok {
		return ErrClosed
	}

	if err := b.send(ctx, conn, data); err != nil {
		b.log.Warn("Dropping peer after failed send", log.String("peer_id", id.String()), log.Error(err))
		b.Remove(id)
		return err
	}
	return nil
}

// Broadcast delivers data to every peer in parallel and returns how many
// received it.
func (b *Broadcaster) Broadcast(ctx context.Context, data []byte) int {
	return concurrent.ForEachMute(b.Peers(), maxParallelSends, func(id uuid.UUID) error {
		return b.Send(ctx, id, data)
	})
}

func (b *Broadcaster) send(ctx context.Context, conn Conn, data []byte) error {
	if b.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.sendTimeout)
		defer cancel()
	}
	return conn.Send(ctx, data)
}

// Close drops every peer.
func (b *Broadcaster) Close() {
	for _, id := range b.Peers() {
		b.Remove(id)
	}
}
