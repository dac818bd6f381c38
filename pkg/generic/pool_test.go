package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_ResetsReturnedValues(t *testing.T) {
	created := 0
	p := NewPool(func() *bytes.Buffer {
		created++
		return new(bytes.Buffer)
	}, (*bytes.Buffer).Reset)

	buf := p.Get()
	buf.WriteString("state")
	p.Put(buf)

	assert.Zero(t, buf.Len())
	assert.Zero(t, p.Get().Len())
	assert.GreaterOrEqual(t, created, 1)
}
