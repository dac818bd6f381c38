package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/snapshot"
	"github.com/zeusync/cosmos/internal/core/systems"
	"github.com/zeusync/cosmos/internal/core/systems/physics"
)

// authority steps a canonical cosmos and records the commands it would send.
type authority struct {
	cosmos    *cosmos.Cosmos
	pipeline  *systems.Pipeline
	seq       uint64
	character models.GUID
	item      models.GUID
}

func newAuthority() *authority {
	c := cosmos.New()
	character := c.CreateEntity(models.KindCharacter)
	item := c.CreateEntity(models.KindItem)
	cosmos.Get[components.Transform](c, item).Pos = models.Vec2{X: 40}

	return &authority{
		cosmos:    c,
		pipeline:  systems.NewPipeline(log.NewNop(), physics.Integrator{}),
		character: c.GUID(character),
		item:      c.GUID(item),
	}
}

func (a *authority) step(t *testing.T, entropy logic.GuidEntropy, heartbeat bool) Command {
	t.Helper()

	cmd := Command{Seq: a.seq, Entropy: entropy}
	if heartbeat {
		data, err := snapshot.Encode(a.cosmos)
		require.NoError(t, err)
		cmd.Heartbeat = data
	}

	a.pipeline.Advance(a.cosmos, entropy.MapToIDs(a.cosmos), nil, nil)
	a.seq++

	return cmd
}

func (a *authority) script(t *testing.T, n, heartbeatEvery int) []Command {
	var out []Command
	for i := range n {
		var entropy logic.GuidEntropy
		switch i % 4 {
		case 0:
			entropy.Intents = []logic.GuidIntent{{Subject: a.character, Kind: messages.IntentMoveRight, Pressed: true}}
		case 1:
			entropy.Transfers = []logic.GuidTransfer{{Item: a.item, TargetContainer: a.character, TargetFunction: models.SlotPrimaryHand}}
		case 2:
			entropy.Intents = []logic.GuidIntent{{Subject: a.character, Kind: messages.IntentMoveRight}}
		case 3:
			entropy.Transfers = []logic.GuidTransfer{{Item: a.item, ImpulseOnDrop: 20}}
		}
		out = append(out, a.step(t, entropy, heartbeatEvery > 0 && i%heartbeatEvery == 0))
	}
	return out
}

func newReceiver(extrapolateAfter int) *Receiver {
	return NewReceiver(NewJitterBuffer(JitterConfig{InitialLag: 1}), extrapolateAfter, log.NewNop())
}

type worlds struct {
	proper, extrapolated, scratch *cosmos.Cosmos
}

func newWorlds() worlds {
	return worlds{cosmos.New(), cosmos.New(), cosmos.New()}
}

func (w worlds) unpack(r *Receiver) UnpackedSteps {
	return r.UnpackDeterministicSteps(w.proper, w.extrapolated, w.scratch)
}

func TestReceiver_SameCommandsSameSteps(t *testing.T) {
	commands := newAuthority().script(t, 12, 5)

	run := func() [][]logic.GuidEntropy {
		r := newReceiver(1)
		w := newWorlds()

		var polls [][]logic.GuidEntropy
		for i, cmd := range commands {
			require.NoError(t, r.AcquireNewCommand(cmd))
			if i%3 == 2 {
				polls = append(polls, w.unpack(r).Steps)
			}
		}
		return polls
	}

	first := run()
	second := run()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestReceiver_ExtrapolatesOnPollN(t *testing.T) {
	const n = 3

	a := newAuthority()
	r := newReceiver(n)
	w := newWorlds()

	require.NoError(t, r.AcquireNewCommand(a.step(t, logic.GuidEntropy{}, true)))
	unpacked := w.unpack(r)
	require.False(t, unpacked.UseExtrapolated)
	require.Len(t, unpacked.Steps, 1)
	assert.Empty(t, cosmos.Compare(w.proper, w.scratch))

	for poll := 1; poll < n; poll++ {
		assert.False(t, w.unpack(r).UseExtrapolated, "poll %d", poll)
	}
	assert.Zero(t, w.extrapolated.Count())

	assert.True(t, w.unpack(r).UseExtrapolated)
	assert.Empty(t, cosmos.Compare(w.proper, w.extrapolated))

	// later empty polls keep extrapolating without copying again
	w.extrapolated.CreateEntity(models.KindObstacle)
	assert.True(t, w.unpack(r).UseExtrapolated)
	assert.Equal(t, w.proper.Count()+1, w.extrapolated.Count())

	// real data resumes
	require.NoError(t, r.AcquireNewCommand(a.step(t, logic.GuidEntropy{}, false)))
	unpacked = w.unpack(r)
	assert.False(t, unpacked.UseExtrapolated)
	assert.Len(t, unpacked.Steps, 1)
}

func TestReceiver_HeartbeatSupersedesEarlierSteps(t *testing.T) {
	a := newAuthority()
	r := NewReceiver(NewJitterBuffer(JitterConfig{InitialLag: 4}), 1, log.NewNop())
	w := newWorlds()

	commands := a.script(t, 4, 2)
	// state the third command starts from
	baseline, err := snapshot.Decode(commands[2].Heartbeat)
	require.NoError(t, err)

	for _, cmd := range commands {
		require.NoError(t, r.AcquireNewCommand(cmd))
	}

	unpacked := w.unpack(r)
	assert.True(t, unpacked.Resynced)
	assert.Equal(t, []logic.GuidEntropy{commands[2].Entropy, commands[3].Entropy}, unpacked.Steps)
	assert.Empty(t, cosmos.Compare(baseline, w.proper))
}

func TestReceiver_DropsEntropyBeforeFirstHeartbeat(t *testing.T) {
	a := newAuthority()
	r := newReceiver(1)
	w := newWorlds()

	require.NoError(t, r.AcquireNewCommand(a.step(t, logic.GuidEntropy{}, false)))
	unpacked := w.unpack(r)
	assert.False(t, unpacked.UseExtrapolated)
	assert.Empty(t, unpacked.Steps)
	assert.False(t, r.Baselined())
}

func TestReceiver_MalformedInputLeavesStateAlone(t *testing.T) {
	a := newAuthority()
	r := newReceiver(1)
	w := newWorlds()

	require.NoError(t, r.AcquireNewCommand(a.step(t, logic.GuidEntropy{}, true)))
	w.unpack(r)
	before := w.proper.Clone()

	// undecodable bytes never reach the buffer
	assert.ErrorIs(t, r.ReadCommand([]byte{byte(CommandHeartbeat), 1, 2}), ErrMalformedCommand)
	assert.Zero(t, r.Buffer().Len())

	// a well-framed heartbeat with a corrupt snapshot is dropped whole,
	// entropy included, and keeps the baseline
	move := logic.GuidEntropy{Intents: []logic.GuidIntent{{Subject: a.character, Kind: messages.IntentMoveUp, Pressed: true}}}
	bad := a.step(t, move, true)
	bad.Heartbeat[10] ^= 0xff // checksum field
	data, err := EncodeCommand(bad)
	require.NoError(t, err)
	require.NoError(t, r.ReadCommand(data))

	unpacked := w.unpack(r)
	assert.False(t, unpacked.Resynced)
	assert.Empty(t, unpacked.Steps)
	assert.False(t, unpacked.UseExtrapolated)
	assert.Empty(t, cosmos.Compare(before, w.proper))

	// the stream goes on from the next command
	require.NoError(t, r.AcquireNewCommand(a.step(t, logic.GuidEntropy{}, false)))
	assert.Len(t, w.unpack(r).Steps, 1)
}

func TestUnpackedSteps_RemapsAgainstMapper(t *testing.T) {
	c := cosmos.New()
	character := c.CreateEntity(models.KindCharacter)

	u := UnpackedSteps{Steps: []logic.GuidEntropy{{
		Intents: []logic.GuidIntent{
			{Subject: c.GUID(character), Kind: messages.IntentMoveUp, Pressed: true},
			{Subject: 999, Kind: messages.IntentMoveUp, Pressed: true},
		},
	}}}

	require.True(t, u.HasNextEntropy())
	entropy := u.UnpackNextEntropy(c)
	assert.False(t, u.HasNextEntropy())
	require.Len(t, entropy.Intents, 1)
	assert.Equal(t, character, entropy.Intents[0].Subject)
}

func TestReceiver_WarnsAboutBadInput(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := newAuthority()
	r := NewReceiver(NewJitterBuffer(JitterConfig{InitialLag: 1}), 1, log.NewWithCore(core))
	w := newWorlds()

	require.Error(t, r.ReadCommand([]byte{0}))
	assert.Equal(t, 1, logs.FilterMessage("Dropping malformed command").Len())

	bad := a.step(t, logic.GuidEntropy{}, true)
	bad.Heartbeat[10] ^= 0xff
	require.NoError(t, r.AcquireNewCommand(bad))
	w.unpack(r)

	warnings := logs.FilterMessage("Dropping heartbeat that failed to decode").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "receiver", warnings[0].ContextMap()["component"])
	assert.Equal(t, bad.Seq, warnings[0].ContextMap()["seq"])
}
