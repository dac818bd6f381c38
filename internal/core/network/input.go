package network

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/zeusync/cosmos/internal/core/logic"
	"github.com/zeusync/cosmos/internal/core/models"
)

// Tags of the messages that travel outside the command stream. They never
// collide with a CommandType.
const (
	tagInput   byte = 0x49
	tagWelcome byte = 0x57

	welcomeSize = 1 + 8 + 8
)

// Welcome tells a joining client which character it controls.
type Welcome struct {
	Character models.GUID
	// Seq of the heartbeat that first contains the character.
	Seq uint64
}

func EncodeWelcome(w Welcome) []byte {
	out := make([]byte, welcomeSize)
	out[0] = tagWelcome
	binary.BigEndian.PutUint64(out[1:9], uint64(w.Character))
	binary.BigEndian.PutUint64(out[9:17], w.Seq)
	return out
}

// IsWelcome reports whether data is a welcome rather than a command.
func IsWelcome(data []byte) bool {
	return len(data) > 0 && data[0] == tagWelcome
}

func DecodeWelcome(data []byte) (Welcome, error) {
	if len(data) != welcomeSize || data[0] != tagWelcome {
		return Welcome{}, fmt.Errorf("%w: bad welcome", ErrMalformedCommand)
	}
	return Welcome{
		Character: models.GUID(binary.BigEndian.Uint64(data[1:9])),
		Seq:       binary.BigEndian.Uint64(data[9:17]),
	}, nil
}

// EncodeInput packs the entropy a client proposes for its own character.
func EncodeInput(e logic.GuidEntropy) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tagInput)
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeInput(data []byte) (logic.GuidEntropy, error) {
	if len(data) == 0 || data[0] != tagInput {
		return logic.GuidEntropy{}, fmt.Errorf("%w: bad input tag", ErrMalformedCommand)
	}

	var e logic.GuidEntropy
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&e); err != nil {
		return logic.GuidEntropy{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	return e, nil
}
