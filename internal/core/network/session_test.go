package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems"
	"github.com/zeusync/cosmos/internal/core/systems/physics"
)

func newSession(opts ...SessionOption) *Session {
	return NewSession(
		NewReceiver(NewJitterBuffer(JitterConfig{InitialLag: 1}), 2, log.NewNop()),
		systems.NewPipeline(log.NewNop(), physics.Integrator{}),
		log.NewNop(),
		opts...,
	)
}

func TestSession_ConvergesWithAuthority(t *testing.T) {
	a := newAuthority()
	commands := a.script(t, 20, 8)

	var pickups int
	s := newSession(WithPostSolve(func(step logic.Step) {
		pickups += logic.Queue[messages.Pickup](step).Len()
	}))

	for _, cmd := range commands {
		data, err := EncodeCommand(cmd)
		require.NoError(t, err)
		require.NoError(t, s.Receiver().ReadCommand(data))

		frame := s.Advance(logic.GuidEntropy{})
		assert.False(t, frame.Extrapolated)
		assert.Equal(t, 1, frame.Steps)
		assert.Same(t, s.Proper(), frame.Cosmos)
	}

	assert.Empty(t, cosmos.Compare(a.cosmos, s.Proper()))
	assert.Equal(t, a.cosmos.Timestamp(), s.Proper().Timestamp())
	assert.Positive(t, pickups)
}

func TestSession_PredictsWhileDry(t *testing.T) {
	a := newAuthority()
	s := newSession()

	require.NoError(t, s.Receiver().AcquireNewCommand(a.step(t, logic.GuidEntropy{}, true)))
	s.Advance(logic.GuidEntropy{})
	properTimestamp := s.Proper().Timestamp()

	predicted := logic.GuidEntropy{Intents: []logic.GuidIntent{{Subject: a.character, Kind: messages.IntentMoveDown, Pressed: true}}}

	frame := s.Advance(predicted)
	assert.False(t, frame.Extrapolated)

	frame = s.Advance(predicted)
	require.True(t, frame.Extrapolated)
	assert.NotSame(t, s.Proper(), frame.Cosmos)
	assert.Equal(t, properTimestamp+1, frame.Cosmos.Timestamp())
	assert.Equal(t, properTimestamp, s.Proper().Timestamp())
	assert.NotNil(t, frame.Bus)
}
