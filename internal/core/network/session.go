package network

import (
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems"
)

// Frame is what a session exposes after one Advance.
type Frame struct {
	// Cosmos to present. It is the extrapolated copy while Extrapolated is set.
	Cosmos *cosmos.Cosmos
	// Bus of the last step run this frame, nil if none ran.
	Bus          *messages.Bus
	Steps        int
	Extrapolated bool
	Resynced     bool
}

// Session drives the properly stepped cosmos from a receiver and falls back
// to an extrapolated copy while the stream is dry.
type Session struct {
	receiver *Receiver
	pipeline *systems.Pipeline
	log      log.Log

	proper       *cosmos.Cosmos
	extrapolated *cosmos.Cosmos
	scratch      *cosmos.Cosmos

	postSolve systems.Callback
}

type SessionOption func(*Session)

// WithPostSolve runs fn after every step of the properly stepped cosmos,
// which is where per-step messages have to be drained.
func WithPostSolve(fn systems.Callback) SessionOption {
	return func(s *Session) {
		s.postSolve = fn
	}
}

func NewSession(receiver *Receiver, pipeline *systems.Pipeline, logger log.Log, opts ...SessionOption) *Session {
	s := &Session{
		receiver:     receiver,
		pipeline:     pipeline,
		log:          logger.With(log.String("component", "session")),
		proper:       cosmos.New(),
		extrapolated: cosmos.New(),
		scratch:      cosmos.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Advance polls the receiver once and runs the resulting steps. predicted is
// the local guess used when the extrapolated cosmos has to move on alone.
func (s *Session) Advance(predicted logic.GuidEntropy) Frame {
	unpacked := s.receiver.UnpackDeterministicSteps(s.proper, s.extrapolated, s.scratch)

	frame := Frame{Resynced: unpacked.Resynced}

	if unpacked.UseExtrapolated {
		if s.receiver.Baselined() {
			frame.Bus = s.pipeline.Advance(s.extrapolated, predicted.MapToIDs(s.extrapolated), nil, nil)
		}
		frame.Cosmos = s.extrapolated
		frame.Extrapolated = true
		return frame
	}

	for unpacked.HasNextEntropy() {
		entropy := unpacked.UnpackNextEntropy(s.proper)
		frame.Bus = s.pipeline.Advance(s.proper, entropy, nil, s.postSolve)
		frame.Steps++
	}

	frame.Cosmos = s.proper
	return frame
}

// Proper returns the properly stepped cosmos.
func (s *Session) Proper() *cosmos.Cosmos {
	return s.proper
}

func (s *Session) Receiver() *Receiver {
	return s.receiver
}
