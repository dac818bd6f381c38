package systems

import (
	"time"

	"github.com/zeusync/cosmos/internal/core/logic"
)

// System is one stage of the step pipeline. Systems keep no state between
// invocations; everything lives in the cosmos.
type System interface {
	Name() string
	Run(step logic.Step)
}

// Func adapts a function to System.
type Func struct {
	name string
	fn   func(step logic.Step)
}

func NewFunc(name string, fn func(step logic.Step)) Func {
	return Func{name: name, fn: fn}
}

func (f Func) Name() string {
	return f.name
}

func (f Func) Run(step logic.Step) {
	f.fn(step)
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	LastExecutionTime    time.Time
}

func (m *Metrics) record(started time.Time, took time.Duration) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.MinExecutionTime == 0 || took < m.MinExecutionTime {
		m.MinExecutionTime = took
	}
	m.LastExecutionTime = started
}
