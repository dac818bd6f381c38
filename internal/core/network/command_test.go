package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/messages"
	"github.com/zeusync/cosmos/internal/core/models"
)

func sampleEntropy() logic.GuidEntropy {
	return logic.GuidEntropy{
		Intents: []logic.GuidIntent{{Subject: 7, Kind: messages.IntentMoveLeft, Pressed: true}},
		Transfers: []logic.GuidTransfer{{
			Item:            3,
			TargetContainer: 7,
			TargetFunction:  models.SlotBack,
			Quantity:        2,
		}},
	}
}

func TestCommand_EncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"entropy", Command{Seq: 42, Entropy: sampleEntropy()}},
		{"empty entropy", Command{Seq: 1}},
		{"heartbeat", Command{Seq: 9, Heartbeat: []byte{1, 2, 3}, Entropy: sampleEntropy()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeCommand(tt.cmd)
			require.NoError(t, err)

			got, err := DecodeCommand(data)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd.Seq, got.Seq)
			assert.Equal(t, tt.cmd.Type(), got.Type())
			assert.Equal(t, tt.cmd.Heartbeat, got.Heartbeat)
			assert.Equal(t, tt.cmd.Entropy.Intents, got.Entropy.Intents)
			assert.Equal(t, tt.cmd.Entropy.Transfers, got.Entropy.Transfers)
		})
	}
}

func TestDecodeCommand_Malformed(t *testing.T) {
	valid, err := EncodeCommand(Command{Seq: 5, Heartbeat: []byte{9, 9}, Entropy: sampleEntropy()})
	require.NoError(t, err)

	mutate := func(fn func([]byte) []byte) []byte {
		return fn(append([]byte(nil), valid...))
	}

	tests := map[string][]byte{
		"empty":          nil,
		"short header":   valid[:commandHeaderSize-1],
		"unknown type":   mutate(func(b []byte) []byte { b[0] = 0xee; return b }),
		"truncated":      valid[:commandHeaderSize+1],
		"entropy typed":  mutate(func(b []byte) []byte { b[0] = byte(CommandEntropy); return b }),
		"missing body":   valid[:commandHeaderSize+2],
		"garbage body":   mutate(func(b []byte) []byte { return append(b[:commandHeaderSize+2], 0xff, 0xff, 0xff) }),
		"zero heartbeat": mutate(func(b []byte) []byte { b[9], b[10], b[11], b[12] = 0, 0, 0, 0; return b }),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCommand(data)
			assert.ErrorIs(t, err, ErrMalformedCommand)
		})
	}
}
