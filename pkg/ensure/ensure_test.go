//go:build !release

package ensure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

func TestThat(t *testing.T) {
	assert.NotPanics(t, func() { That(true, "fine") })
	assert.PanicsWithValue(t, "invariant violated: meter negative value=-1", func() {
		That(false, "meter negative", log.Float64("value", -1))
	})
}
