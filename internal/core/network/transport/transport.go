// Package transport moves encoded commands and entropy between hosts over
// websocket or QUIC.
package transport

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"
)

var (
	ErrClosed        = errors.New("connection is closed")
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
	ErrUnknownKind   = errors.New("unknown transport kind")
)

// MaxFrameSize bounds a single message on any transport.
const MaxFrameSize = 32 << 20

// Kind names a transport implementation.
type Kind string

const (
	KindWebsocket Kind = "websocket"
	KindQUIC      Kind = "quic"
)

// Conn is a message-oriented, bidirectional connection.
// Send is safe for concurrent use; Receive must be called from one goroutine.
type Conn interface {
	ID() uuid.UUID
	RemoteAddr() net.Addr
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Listener accepts incoming connections.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() net.Addr
	Close() error
}
