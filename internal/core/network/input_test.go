package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	data := EncodeWelcome(Welcome{Character: 12, Seq: 99})
	require.True(t, IsWelcome(data))

	w, err := DecodeWelcome(data)
	require.NoError(t, err)
	assert.Equal(t, Welcome{Character: 12, Seq: 99}, w)

	_, err = DecodeWelcome(data[:5])
	assert.ErrorIs(t, err, ErrMalformedCommand)

	cmd, err := EncodeCommand(Command{Seq: 1})
	require.NoError(t, err)
	assert.False(t, IsWelcome(cmd))
}

func TestInput(t *testing.T) {
	data, err := EncodeInput(sampleEntropy())
	require.NoError(t, err)

	got, err := DecodeInput(data)
	require.NoError(t, err)
	assert.Equal(t, sampleEntropy(), got)

	_, err = DecodeInput(data[1:])
	assert.ErrorIs(t, err, ErrMalformedCommand)
	_, err = DecodeInput(data[:3])
	assert.ErrorIs(t, err, ErrMalformedCommand)
}
