package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/components"
	"github.com/zeusync/cosmos/internal/core/cosmos"
	"github.com/zeusync/cosmos/internal/core/models"
)

func populated(t *testing.T) *cosmos.Cosmos {
	t.Helper()

	c := cosmos.New()
	character := c.CreateEntity(models.KindCharacter)
	item := c.CreateEntity(models.KindItem)
	removed := c.CreateEntity(models.KindObstacle)
	require.True(t, c.DeleteEntity(removed))

	c.SetCurrentSlot(item, models.SlotID{Container: character, Function: models.SlotPrimaryHand})
	c.SetPendingMount(cosmos.PendingMount{
		Item:             item,
		Target:           models.SlotID{Container: character, Function: models.SlotBack},
		ProgressMs:       12.5,
		RemainingCharges: 1,
	})
	cosmos.Get[components.Transform](c, character).Pos = models.Vec2{X: 3, Y: -4}
	c.AdvanceTimestamp()

	return c
}

func TestEncodeDecode_PreservesState(t *testing.T) {
	c := populated(t)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Empty(t, cosmos.Compare(c, decoded))
	assert.Equal(t, c.Timestamp(), decoded.Timestamp())
	assert.Equal(t, c.PendingMounts(), decoded.PendingMounts())
	assert.Equal(t, c.Entities(), decoded.Entities())

	// the free list survives, so the next allocation matches
	assert.Equal(t, c.CreateEntity(models.KindItem), decoded.CreateEntity(models.KindItem))
}

func TestChecksum(t *testing.T) {
	a := populated(t)
	b := populated(t)

	sumA, err := Checksum(a)
	require.NoError(t, err)
	sumB, err := Checksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)

	cosmos.Get[components.Transform](b, b.Entities()[0]).Rotation = 1
	sumB, err = Checksum(b)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)
}

func TestChecksum_StableAcrossRoundTrip(t *testing.T) {
	c := populated(t)

	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	want, err := Checksum(c)
	require.NoError(t, err)
	got, err := Checksum(decoded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecode_Rejects(t *testing.T) {
	data, err := Encode(populated(t))
	require.NoError(t, err)

	corrupt := func(mutate func([]byte)) []byte {
		out := append([]byte(nil), data...)
		mutate(out)
		return out
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", data[:headerSize-1], ErrTooShort},
		{"magic", corrupt(func(b []byte) { b[0] = 'X' }), ErrBadMagic},
		{"version", corrupt(func(b []byte) { binary.BigEndian.PutUint16(b[4:6], Version+1) }), ErrUnsupportedVersion},
		{"checksum", corrupt(func(b []byte) { b[17] ^= 0xff }), ErrChecksumMismatch},
		{"size", corrupt(func(b []byte) { binary.BigEndian.PutUint32(b[6:10], MaxRawSize+1) }), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRestore_LeavesTargetOnError(t *testing.T) {
	target := populated(t)
	before := target.Clone()

	err := Restore(target, []byte("garbage that is long enough"))
	require.Error(t, err)
	assert.Empty(t, cosmos.Compare(before, target))

	data, err := Encode(cosmos.New())
	require.NoError(t, err)
	require.NoError(t, Restore(target, data))
	assert.Zero(t, target.Count())
}
