//go:build release

package ensure

import "github.com/zeusync/cosmos/internal/core/observability/log"

const Enabled = false

// That logs msg through the process-wide logger if cond is false.
func That(cond bool, msg string, fields ...log.Field) {
	if cond {
		return
	}
	log.Provide().Error("invariant violated: "+msg, fields...)
}
