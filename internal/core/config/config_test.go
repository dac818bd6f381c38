package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/network/transport"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 60, c.Simulation.TickRateHz)
	assert.Equal(t, 60, c.Simulation.HeartbeatEvery)
	assert.Equal(t, 0.5, c.Simulation.Rules.UnmountDurationMultiplier)
	assert.Equal(t, 0.35, c.Simulation.Rules.DropDurationMultiplier)
	assert.Equal(t, 300.0, c.Simulation.Rules.DropCollisionCooldownMs)
	assert.Equal(t, 55700.0, c.Simulation.Rules.CorpseImpulse)
	assert.Equal(t, transport.KindWebsocket, c.Network.Transport)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	doc := `
simulation:
  tick_rate_hz: 30
  rules:
    corpse_impulse: 1000
network:
  transport: quic
  send_timeout: 500ms
  jitter:
    initial_lag: 4
    extrapolate_after: 3
log:
  level: debug
`
	c, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 30, c.Simulation.TickRateHz)
	assert.Equal(t, 60, c.Simulation.HeartbeatEvery)
	assert.Equal(t, 1000.0, c.Simulation.Rules.CorpseImpulse)
	assert.Equal(t, 0.5, c.Simulation.Rules.UnmountDurationMultiplier)
	assert.Equal(t, transport.KindQUIC, c.Network.Transport)
	assert.Equal(t, 500*time.Millisecond, c.Network.SendTimeout)
	assert.Equal(t, 4, c.Network.Jitter.InitialLag)
	assert.Equal(t, 3, c.Network.Jitter.ExtrapolateAfter)
	assert.Equal(t, "debug", c.Log.Level)

	assert.Equal(t, time.Second/30, c.Simulation.TickInterval())

	common := c.Simulation.CommonState()
	assert.InDelta(t, 1000.0/30, common.DeltaMs, 1e-9)
	assert.Equal(t, 1000.0, common.Rules.CorpseImpulse)

	buffer := c.Network.Jitter.Buffer()
	assert.Equal(t, 4, buffer.InitialLag)
}

func TestLoad_Empty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":         "simulation:\n  tick_rate: 30\n",
		"zero tick rate":      "simulation:\n  tick_rate_hz: 0\n",
		"bad transport":       "network:\n  transport: tcp\n",
		"relative path":       "network:\n  path: cosmos\n",
		"no extrapolation":    "network:\n  jitter:\n    extrapolate_after: 0\n",
		"lag over capacity":   "network:\n  jitter:\n    initial_lag: 10\n    max_buffered: 5\n",
		"unknown level":       "log:\n  level: chatty\n",
		"negative multiplier": "simulation:\n  rules:\n    drop_duration_multiplier: -1\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	c := Default()
	c.Simulation.TickRateHz = 0
	c.Simulation.HeartbeatEvery = 0

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "tick_rate_hz")
	assert.Contains(t, err.Error(), "heartbeat_every")
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "cosmos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  heartbeat_every: 10\n"), 0o600))

	c, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Simulation.HeartbeatEvery)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
