// Package logic bundles what a single simulation step operates on.
package logic

import (
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// Step is the only handle systems receive. It is passed by value and must
// not be retained past the system invocation it was given to.
type Step struct {
	cosmos  *cosmos.Cosmos
	entropy Entropy
	bus     *messages.Bus
	log     log.Log
}

func NewStep(c *cosmos.Cosmos, entropy Entropy, bus *messages.Bus) Step {
	return Step{cosmos: c, entropy: entropy, bus: bus}
}

// WithLog returns a copy of s that reports diagnostics to l.
func (s Step) WithLog(l log.Log) Step {
	s.log = l
	return s
}

// Log returns the diagnostics logger, a no-op one if none was attached.
func (s Step) Log() log.Log {
	if s.log == nil {
		return log.NewNop()
	}
	return s.log
}

func (s Step) Cosmos() *cosmos.Cosmos {
	return s.cosmos
}

func (s Step) Entropy() Entropy {
	return s.entropy
}

func (s Step) Bus() *messages.Bus {
	return s.bus
}

// DeltaMs is the fixed duration of the step.
func (s Step) DeltaMs() float64 {
	return s.cosmos.Common().DeltaMs
}

// DeleteEntity queues id for deletion at the end of the step.
func (s Step) DeleteEntity(id models.EntityID) {
	messages.Post(s.bus, messages.QueueDeletion{Subject: id})
}

// Post appends m to the step's queue of its type.
func Post[T any](s Step, m T) {
	messages.Post(s.bus, m)
}

// Queue returns the step's queue of message type T.
func Queue[T any](s Step) *messages.Queue[T] {
	return messages.QueueOf[T](s.bus)
}
