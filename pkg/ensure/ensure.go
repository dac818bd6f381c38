//go:build !release

// Package ensure asserts simulation invariants. A broken invariant means the
// step can no longer be replayed bit-exactly, so debug builds stop right there.
// Builds tagged release log the violation and keep running.
package ensure

import (
	"fmt"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// Enabled reports whether violations panic.
const Enabled = true

// That panics with msg if cond is false.
func That(cond bool, msg string, fields ...log.Field) {
	if cond {
		return
	}
	panic(violation(msg, fields))
}

func violation(msg string, fields []log.Field) string {
	if len(fields) == 0 {
		return "invariant violated: " + msg
	}
	s := "invariant violated: " + msg
	for _, f := range fields {
		s += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	return s
}
