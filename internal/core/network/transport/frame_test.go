package transport

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("first")))
	require.NoError(t, writeFrame(&buf, nil))
	require.NoError(t, writeFrame(&buf, []byte("third")))

	for _, want := range []string{"first", "", "third"} {
		got, err := readFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	_, err := readFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrame_Limits(t *testing.T) {
	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], MaxFrameSize+1)

	_, err := readFrame(bytes.NewReader(header[:]))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	binary.BigEndian.PutUint32(header[:], 10)
	_, err = readFrame(bytes.NewReader(append(header[:], 1, 2, 3)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
