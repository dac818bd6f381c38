package network

import (
	"errors"
	"sync"

	"github.com/zeusync/cosmos/pkg/sequence"
)

var (
	ErrLateCommand      = errors.New("command arrived after its step was released")
	ErrDuplicateCommand = errors.New("command already buffered")
	ErrBufferFull       = errors.New("jitter buffer is full")
)

// JitterConfig paces the release of buffered commands.
type JitterConfig struct {
	// InitialLag is how many commands are held back before the first release.
	InitialLag int
	// MaxReleasePerPoll caps a single UnpackCommandsOnce. Zero means no cap.
	MaxReleasePerPoll int
	// MaxBuffered caps how many commands may wait at once. Zero means no cap.
	MaxBuffered int
}

func DefaultJitterConfig() JitterConfig {
	return JitterConfig{
		InitialLag:        2,
		MaxReleasePerPoll: 5,
		MaxBuffered:       256,
	}
}

// JitterStats is a point-in-time view of the buffer counters.
type JitterStats struct {
	Buffered          int
	Released          uint64
	DroppedLate       uint64
	DroppedDuplicate  uint64
	DroppedOverflow   uint64
	Skipped           uint64
	StepsExtrapolated int
}

// JitterBuffer reorders commands by sequence number and releases them in
// order, at most MaxReleasePerPoll at a time. It is the only structure
// shared between the network goroutine and the simulation goroutine.
type JitterBuffer struct {
	mu     sync.Mutex
	config JitterConfig

	queue      *sequence.PriorityQueue[Command]
	queued     map[uint64]struct{}
	heartbeats int

	started bool
	next    uint64

	stats JitterStats
}

func NewJitterBuffer(config JitterConfig) *JitterBuffer {
	return &JitterBuffer{
		config: config,
		queue: sequence.NewPriorityQueue(func(a, b Command) bool {
			return a.Seq < b.Seq
		}),
		queued: make(map[uint64]struct{}),
	}
}

// AcquireNewCommand buffers cmd. Rejected commands leave the buffer unchanged.
func (b *JitterBuffer) AcquireNewCommand(cmd Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started && cmd.Seq < b.next {
		b.stats.DroppedLate++
		return ErrLateCommand
	}
	if _, ok := b.queued[cmd.Seq]; ok {
		b.stats.DroppedDuplicate++
		return ErrDuplicateCommand
	}
	if b.config.MaxBuffered > 0 && b.queue.Len() >= b.config.MaxBuffered {
		b.stats.DroppedOverflow++
		return ErrBufferFull
	}

	b.queue.Enqueue(cmd)
	b.queued[cmd.Seq] = struct{}{}
	if cmd.Type() == CommandHeartbeat {
		b.heartbeats++
	}

	return nil
}

// UnpackCommandsOnce releases the commands that are ready, in sequence order.
// An empty result counts as one extrapolated step.
func (b *JitterBuffer) UnpackCommandsOnce() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Command

	if !b.started {
		if b.queue.Len() < max(b.config.InitialLag, 1) {
			b.stats.StepsExtrapolated++
			return nil
		}
		head, _ := b.queue.Peek()
		b.next = head.Seq
		b.started = true
	}

	for b.config.MaxReleasePerPoll == 0 || len(out) < b.config.MaxReleasePerPoll {
		head, ok := b.queue.Peek()
		if !ok {
			break
		}

		if head.Seq != b.next {
			// A missing step can only be recovered by a later heartbeat,
			// which makes everything before it irrelevant.
			if b.heartbeats == 0 {
				break
			}
			b.skipToHeartbeat()
			continue
		}

		out = append(out, b.pop())
		b.next++
	}

	if len(out) == 0 {
		b.stats.StepsExtrapolated++
	} else {
		b.stats.StepsExtrapolated = 0
		b.stats.Released += uint64(len(out))
	}

	return out
}

func (b *JitterBuffer) pop() Command {
	cmd, _ := b.queue.Dequeue()
	delete(b.queued, cmd.Seq)
	if cmd.Type() == CommandHeartbeat {
		b.heartbeats--
	}
	return cmd
}

func (b *JitterBuffer) skipToHeartbeat() {
	for {
		head, ok := b.queue.Peek()
		if !ok {
			return
		}
		if head.Type() == CommandHeartbeat {
			b.next = head.Seq
			return
		}
		b.pop()
		b.stats.Skipped++
	}
}

// StepsExtrapolated is the number of consecutive polls that released nothing.
func (b *JitterBuffer) StepsExtrapolated() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats.StepsExtrapolated
}

func (b *JitterBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

func (b *JitterBuffer) Stats() JitterStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.stats
	stats.Buffered = b.queue.Len()
	return stats
}

// Reset drops every buffered command and waits for InitialLag again.
func (b *JitterBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.Clear()
	clear(b.queued)
	b.heartbeats = 0
	b.started = false
	b.next = 0
	b.stats.StepsExtrapolated = 0
}
