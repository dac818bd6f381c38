package network

import (
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/snapshot"
	"github.com/zeusync/cosmos/pkg/ensure"
)

// UnpackedSteps is the outcome of one receiver poll.
type UnpackedSteps struct {
	// Steps to replay against the properly stepped cosmos, oldest first.
	Steps []logic.GuidEntropy
	// UseExtrapolated tells the caller to advance the extrapolated cosmos
	// with locally predicted input instead.
	UseExtrapolated bool
	// Resynced is set when a heartbeat replaced the properly stepped cosmos.
	Resynced bool
}

func (u *UnpackedSteps) HasNextEntropy() bool {
	return len(u.Steps) > 0
}

// UnpackNextEntropy pops the oldest step and resolves its GUIDs against
// mapper, which must be the cosmos the step is about to run on.
func (u *UnpackedSteps) UnpackNextEntropy(mapper *cosmos.Cosmos) logic.Entropy {
	ensure.That(u.HasNextEntropy(), "unpacking entropy from an empty step list")

	next := u.Steps[0]
	u.Steps = u.Steps[1:]

	return next.MapToIDs(mapper)
}

// Receiver turns the authoritative command stream into steps for the
// properly stepped cosmos.
type Receiver struct {
	buffer           *JitterBuffer
	extrapolateAfter int
	log              log.Log

	baselined bool
}

// NewReceiver builds a receiver that switches to the extrapolated cosmos
// after extrapolateAfter consecutive empty polls.
func NewReceiver(buffer *JitterBuffer, extrapolateAfter int, logger log.Log) *Receiver {
	return &Receiver{
		buffer:           buffer,
		extrapolateAfter: max(extrapolateAfter, 1),
		log:              logger.With(log.String("component", "receiver")),
	}
}

// ReadCommand decodes data and hands it to the jitter buffer. Safe to call
// from the network goroutine.
func (r *Receiver) ReadCommand(data []byte) error {
	cmd, err := DecodeCommand(data)
	if err != nil {
		r.log.Warn("Dropping malformed command", log.Int("size", len(data)), log.Error(err))
		return err
	}
	return r.AcquireNewCommand(cmd)
}

func (r *Receiver) AcquireNewCommand(cmd Command) error {
	if err := r.buffer.AcquireNewCommand(cmd); err != nil {
		r.log.Debug("Command rejected by jitter buffer",
			log.Uint64("seq", cmd.Seq),
			log.String("type", cmd.Type().String()),
			log.Error(err))
		return err
	}
	return nil
}

// Buffer exposes the jitter buffer for inspection.
func (r *Receiver) Buffer() *JitterBuffer {
	return r.buffer
}

// UnpackDeterministicSteps polls the jitter buffer once.
//
// A heartbeat is decoded into scratch and becomes the new properly stepped
// cosmos, discarding the steps unpacked before it in the same poll. A
// heartbeat that fails to decode is dropped along with its entropy. When the
// poll yields nothing for the extrapolateAfter'th time in a row, proper is
// copied into extrapolated and the caller is told to use it from now on.
func (r *Receiver) UnpackDeterministicSteps(proper, extrapolated, scratch *cosmos.Cosmos) UnpackedSteps {
	var result UnpackedSteps

	commands := r.buffer.UnpackCommandsOnce()

	if len(commands) == 0 {
		n := r.buffer.StepsExtrapolated()
		if n == r.extrapolateAfter {
			extrapolated.AssignFrom(proper)
		}
		result.UseExtrapolated = n >= r.extrapolateAfter
		return result
	}

	for _, cmd := range commands {
		if cmd.Type() == CommandHeartbeat {
			if err := snapshot.Restore(scratch, cmd.Heartbeat); err != nil {
				r.log.Warn("Dropping heartbeat that failed to decode",
					log.Uint64("seq", cmd.Seq),
					log.Error(err))
				continue
			}

			proper.AssignFrom(scratch)
			result.Steps = result.Steps[:0]
			result.Resynced = true

			r.log.Debug("Resynced to heartbeat",
				log.Uint64("seq", cmd.Seq),
				log.Uint64("timestamp", proper.Timestamp()),
				log.Bool("first", !r.baselined))
			r.baselined = true
		}

		if !r.baselined {
			r.log.Debug("Dropping entropy received before the first heartbeat", log.Uint64("seq", cmd.Seq))
			continue
		}

		result.Steps = append(result.Steps, cmd.Entropy)
	}

	return result
}

// Baselined reports whether a heartbeat has been applied yet.
func (r *Receiver) Baselined() bool {
	return r.baselined
}
