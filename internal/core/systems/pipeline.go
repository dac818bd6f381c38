package systems

import (
	"time"

	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems/destroy"
	"github.com/zeusync/cosmos/internal/core/systems/input"
	"github.com/zeusync/cosmos/internal/core/systems/inventory"
	"github.com/zeusync/cosmos/internal/core/systems/movement"
	"github.com/zeusync/cosmos/internal/core/systems/physics"
	"github.com/zeusync/cosmos/internal/core/systems/sentience"
)

// Callback runs inside a step, either before the first stage or after the last.
type Callback func(step logic.Step)

// Pipeline advances a cosmos one step at a time through a fixed sequence of
// systems. The order is part of the simulation's semantics.
type Pipeline struct {
	log     log.Log
	stages  []System
	metrics []Metrics
	bus     *messages.Bus
}

// NewPipeline builds the standard pipeline around solver.
func NewPipeline(logger log.Log, solver physics.Solver) *Pipeline {
	return NewPipelineWithStages(logger,
		input.System{},
		movement.System{},
		NewFunc("physics", solver.Solve),
		sentience.System{},
		inventory.System{},
		destroy.System{},
	)
}

// NewPipelineWithStages builds a pipeline running exactly the given stages.
func NewPipelineWithStages(logger log.Log, stages ...System) *Pipeline {
	return &Pipeline{
		log:     logger.With(log.String("component", "pipeline")),
		stages:  stages,
		metrics: make([]Metrics, len(stages)),
		bus:     messages.NewBus(),
	}
}

// Advance runs one step over c with entropy. The returned bus holds every
// message of the step and stays valid until the next Advance.
func (p *Pipeline) Advance(c *cosmos.Cosmos, entropy logic.Entropy, preSolve, postSolve Callback) *messages.Bus {
	p.bus.Clear()

	step := logic.NewStep(c, entropy, p.bus).WithLog(p.log)

	if preSolve != nil {
		preSolve(step)
	}

	stepStarted := time.Now()
	for i, stage := range p.stages {
		started := time.Now()
		stage.Run(step)
		p.metrics[i].record(started, time.Since(started))
	}

	if p.log.Enabled(log.LevelDebug) {
		p.log.Debug("Step advanced",
			log.Uint64("timestamp", c.Timestamp()),
			log.Duration("elapsed", time.Since(stepStarted)))
	}

	c.AdvanceTimestamp()

	if postSolve != nil {
		postSolve(step)
	}

	return p.bus
}

// Stages lists the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Metrics returns the metrics of the named stage.
func (p *Pipeline) Metrics(name string) (Metrics, bool) {
	for i, s := range p.stages {
		if s.Name() == name {
			return p.metrics[i], true
		}
	}
	return Metrics{}, false
}
