package physics

import "github.com/zeusync/cosmos/internal/core/logic"

// Solver advances bodies by one step.
//
// It is called exactly once per step. It reads the velocities gameplay
// systems left on activated rigid bodies, writes back transforms and posts a
// Collision for every touching pair. Given identical body state and delta the
// output must be identical.
type Solver interface {
	Solve(step logic.Step)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(step logic.Step)

func (f SolverFunc) Solve(step logic.Step) {
	f(step)
}
