// Package network reconciles the authoritative command stream with the
// locally simulated cosmos.
package network

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/zeusync/cosmos/internal/core/logic"
)

// CommandType is the first byte of every encoded command.
type CommandType uint8

const (
	// CommandEntropy carries the entropy for the next step.
	CommandEntropy CommandType = iota + 1
	// CommandHeartbeat carries the complete state the next step starts from,
	// plus the entropy for that step.
	CommandHeartbeat
)

func (t CommandType) String() string {
	switch t {
	case CommandEntropy:
		return "entropy"
	case CommandHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

const (
	commandHeaderSize = 1 + 8 + 4

	// MaxHeartbeatSize bounds the encoded snapshot a command may carry.
	MaxHeartbeatSize = 16 << 20
)

var ErrMalformedCommand = errors.New("malformed command")

// Command is one record of the authoritative stream. Seq numbers the step
// the entropy belongs to. Commands are never mutated after they are queued.
type Command struct {
	Seq       uint64
	Heartbeat []byte
	Entropy   logic.GuidEntropy
}

func (c Command) Type() CommandType {
	if c.Heartbeat != nil {
		return CommandHeartbeat
	}
	return CommandEntropy
}

// EncodeCommand lays a command out as
//
//	type u8 | seq u64 | heartbeat length u32 | heartbeat | gob(entropy)
func EncodeCommand(c Command) ([]byte, error) {
	if len(c.Heartbeat) > MaxHeartbeatSize {
		return nil, fmt.Errorf("heartbeat of %d bytes exceeds limit", len(c.Heartbeat))
	}

	var buf bytes.Buffer
	buf.Grow(commandHeaderSize + len(c.Heartbeat))

	var header [commandHeaderSize]byte
	header[0] = byte(c.Type())
	binary.BigEndian.PutUint64(header[1:9], c.Seq)
	binary.BigEndian.PutUint32(header[9:13], uint32(len(c.Heartbeat)))
	buf.Write(header[:])
	buf.Write(c.Heartbeat)

	if err := gob.NewEncoder(&buf).Encode(c.Entropy); err != nil {
		return nil, fmt.Errorf("encode entropy: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeCommand parses data produced by EncodeCommand. Every failure
// wraps ErrMalformedCommand.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) < commandHeaderSize {
		return Command{}, fmt.Errorf("%w: %d bytes", ErrMalformedCommand, len(data))
	}

	kind := CommandType(data[0])
	seq := binary.BigEndian.Uint64(data[1:9])
	size := binary.BigEndian.Uint32(data[9:13])
	rest := data[commandHeaderSize:]

	switch kind {
	case CommandEntropy:
		if size != 0 {
			return Command{}, fmt.Errorf("%w: entropy command with heartbeat", ErrMalformedCommand)
		}
	case CommandHeartbeat:
		if size == 0 || size > MaxHeartbeatSize {
			return Command{}, fmt.Errorf("%w: heartbeat of %d bytes", ErrMalformedCommand, size)
		}
	default:
		return Command{}, fmt.Errorf("%w: unknown type %d", ErrMalformedCommand, kind)
	}

	if uint64(len(rest)) < uint64(size) {
		return Command{}, fmt.Errorf("%w: truncated heartbeat", ErrMalformedCommand)
	}

	cmd := Command{Seq: seq}
	if size > 0 {
		cmd.Heartbeat = bytes.Clone(rest[:size])
	}

	if err := gob.NewDecoder(bytes.NewReader(rest[size:])).Decode(&cmd.Entropy); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	return cmd, nil
}
