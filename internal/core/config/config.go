// Package config loads host configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/network"
	"github.com/zeusync/cosmos/internal/core/network/transport"
	"github.com/zeusync/cosmos/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Network    NetworkConfig    `json:"network" yaml:"network"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type SimulationConfig struct {
	TickRateHz int `json:"tick_rate_hz" yaml:"tick_rate_hz"`
	// HeartbeatEvery is the number of steps between two complete-state commands.
	HeartbeatEvery int         `json:"heartbeat_every" yaml:"heartbeat_every"`
	Rules          RulesConfig `json:"rules" yaml:"rules"`
}

type RulesConfig struct {
	UnmountDurationMultiplier float64 `json:"unmount_duration_multiplier" yaml:"unmount_duration_multiplier"`
	DropDurationMultiplier    float64 `json:"drop_duration_multiplier" yaml:"drop_duration_multiplier"`
	DropCollisionCooldownMs   float64 `json:"drop_collision_cooldown_ms" yaml:"drop_collision_cooldown_ms"`
	DropImpulse               float64 `json:"drop_impulse" yaml:"drop_impulse"`
	CorpseImpulse             float64 `json:"corpse_impulse" yaml:"corpse_impulse"`
}

type NetworkConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	ServerAddr string `json:"server_addr" yaml:"server_addr"`
	// StatusAddr serves the server status endpoint. Empty disables it.
	StatusAddr  string         `json:"status_addr" yaml:"status_addr"`
	Transport   transport.Kind `json:"transport" yaml:"transport"`
	Path        string         `json:"path" yaml:"path"`
	SendTimeout time.Duration  `json:"send_timeout" yaml:"send_timeout"`
	Jitter      JitterConfig   `json:"jitter" yaml:"jitter"`
}

type JitterConfig struct {
	InitialLag        int `json:"initial_lag" yaml:"initial_lag"`
	MaxReleasePerPoll int `json:"max_release_per_poll" yaml:"max_release_per_poll"`
	ExtrapolateAfter  int `json:"extrapolate_after" yaml:"extrapolate_after"`
	MaxBuffered       int `json:"max_buffered" yaml:"max_buffered"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

func Default() *Config {
	rules := cosmos.DefaultRules()
	jitter := network.DefaultJitterConfig()

	return &Config{
		Simulation: SimulationConfig{
			TickRateHz:     60,
			HeartbeatEvery: 60,
			Rules: RulesConfig{
				UnmountDurationMultiplier: rules.UnmountDurationMultiplier,
				DropDurationMultiplier:    rules.DropDurationMultiplier,
				DropCollisionCooldownMs:   rules.DropCollisionCooldownMs,
				DropImpulse:               rules.DropImpulse,
				CorpseImpulse:             rules.CorpseImpulse,
			},
		},
		Network: NetworkConfig{
			ListenAddr:  ":7777",
			ServerAddr:  "127.0.0.1:7777",
			Transport:   transport.KindWebsocket,
			Path:        "/cosmos",
			SendTimeout: 2 * time.Second,
			Jitter: JitterConfig{
				InitialLag:        jitter.InitialLag,
				MaxReleasePerPoll: jitter.MaxReleasePerPoll,
				ExtrapolateAfter:  1,
				MaxBuffered:       jitter.MaxBuffered,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load decodes YAML from r over the defaults and validates the result.
// Keys missing from the document keep their default values.
func Load(r io.Reader) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile is Load for a file path. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	sim := c.Simulation
	check(sim.TickRateHz > 0 && sim.TickRateHz <= 1000, "simulation.tick_rate_hz must be in (0, 1000], got %d", sim.TickRateHz)
	check(sim.HeartbeatEvery > 0, "simulation.heartbeat_every must be positive, got %d", sim.HeartbeatEvery)

	rules := sim.Rules
	check(rules.UnmountDurationMultiplier >= 0, "simulation.rules.unmount_duration_multiplier must not be negative")
	check(rules.DropDurationMultiplier >= 0, "simulation.rules.drop_duration_multiplier must not be negative")
	check(rules.DropCollisionCooldownMs >= 0, "simulation.rules.drop_collision_cooldown_ms must not be negative")

	nw := c.Network
	check(nw.Transport == transport.KindWebsocket || nw.Transport == transport.KindQUIC,
		"network.transport must be %q or %q, got %q", transport.KindWebsocket, transport.KindQUIC, nw.Transport)
	check(nw.Transport != transport.KindWebsocket || len(nw.Path) > 0 && nw.Path[0] == '/',
		"network.path must start with '/', got %q", nw.Path)
	check(nw.SendTimeout >= 0, "network.send_timeout must not be negative")

	jitter := nw.Jitter
	check(jitter.InitialLag >= 0, "network.jitter.initial_lag must not be negative")
	check(jitter.MaxReleasePerPoll >= 0, "network.jitter.max_release_per_poll must not be negative")
	check(jitter.ExtrapolateAfter > 0, "network.jitter.extrapolate_after must be positive, got %d", jitter.ExtrapolateAfter)
	check(jitter.MaxBuffered >= 0, "network.jitter.max_buffered must not be negative")
	check(jitter.MaxBuffered == 0 || jitter.MaxBuffered >= jitter.InitialLag,
		"network.jitter.max_buffered (%d) must hold initial_lag (%d)", jitter.MaxBuffered, jitter.InitialLag)

	_, err := log.ParseLevel(c.Log.Level)
	check(err == nil, "log.level: %v", err)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// TickInterval is the wall-clock duration of one step.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRateHz)
}

// CommonState is the cosmos common state the simulation starts with.
func (s SimulationConfig) CommonState() cosmos.CommonState {
	common := cosmos.DefaultCommonState()
	common.DeltaMs = 1000 / float64(s.TickRateHz)
	common.Rules = cosmos.Rules{
		UnmountDurationMultiplier: s.Rules.UnmountDurationMultiplier,
		DropDurationMultiplier:    s.Rules.DropDurationMultiplier,
		DropCollisionCooldownMs:   s.Rules.DropCollisionCooldownMs,
		DropImpulse:               s.Rules.DropImpulse,
		CorpseImpulse:             s.Rules.CorpseImpulse,
	}
	return common
}

func (j JitterConfig) Buffer() network.JitterConfig {
	return network.JitterConfig{
		InitialLag:        j.InitialLag,
		MaxReleasePerPoll: j.MaxReleasePerPoll,
		MaxBuffered:       j.MaxBuffered,
	}
}
