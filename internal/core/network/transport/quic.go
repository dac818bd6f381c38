package transport

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

const quicNoError quic.ApplicationErrorCode = 0

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	}
}

var _ Conn = (*QUICConn)(nil)

// QUICConn sends length-prefixed frames over a single bidirectional stream.
// The dialing side opens the stream and announces it with an empty frame.
type QUICConn struct {
	id     uuid.UUID
	conn   *quic.Conn
	stream *quic.Stream
	closed int32

	writeMu sync.Mutex
}

func newQUICConn(conn *quic.Conn, stream *quic.Stream) *QUICConn {
	return &QUICConn{
		id:     uuid.New(),
		conn:   conn,
		stream: stream,
	}
}

func (c *QUICConn) ID() uuid.UUID {
	return c.id
}

func (c *QUICConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *QUICConn) Send(ctx context.Context, data []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = c.stream.SetWriteDeadline(deadline)

	return writeFrame(c.stream, data)
}

func (c *QUICConn) Receive(ctx context.Context) ([]byte, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	_ = c.stream.SetReadDeadline(deadline)

	return readFrame(c.stream)
}

func (c *QUICConn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	_ = c.stream.Close()
	return c.conn.CloseWithError(quicNoError, "closed")
}

// DialQUIC connects to a QUICListener at addr.
func DialQUIC(ctx context.Context, addr string, tlsConfig *tls.Config) (*QUICConn, error) {
	tlsConfig = tlsConfig.Clone()
	if tlsConfig.ServerName == "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			tlsConfig.ServerName = host
		}
	}

	conn, err := quic.DialAddr(ctx, addr, tlsConfig, quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", addr)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(quicNoError, "")
		return nil, errors.Wrap(err, "failed to open stream")
	}

	// the peer learns about the stream only once data flows on it
	if err = writeFrame(stream, nil); err != nil {
		_ = conn.CloseWithError(quicNoError, "")
		return nil, err
	}

	return newQUICConn(conn, stream), nil
}

var _ Listener = (*QUICListener)(nil)

type QUICListener struct {
	listener *quic.Listener
	log      log.Log
	closed   int32
}

// ListenQUIC listens for QUIC connections on addr.
func ListenQUIC(addr string, tlsConfig *tls.Config, logger log.Log) (*QUICListener, error) {
	listener, err := quic.ListenAddr(addr, tlsConfig, quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	l := &QUICListener{
		listener: listener,
		log:      logger.With(log.String("transport", string(KindQUIC))),
	}
	l.log.Info("QUIC listener started", log.String("addr", listener.Addr().String()))

	return l, nil
}

func (l *QUICListener) Accept(ctx context.Context) (Conn, error) {
	if atomic.LoadInt32(&l.closed) == 1 {
		return nil, ErrClosed
	}

	conn, err := l.listener.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to accept connection")
	}

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(quicNoError, "")
		return nil, errors.Wrap(err, "failed to accept stream")
	}

	if _, err = readFrame(stream); err != nil {
		_ = conn.CloseWithError(quicNoError, "")
		return nil, err
	}

	c := newQUICConn(conn, stream)
	l.log.Debug("QUIC connection accepted",
		log.String("connection_id", c.ID().String()),
		log.String("remote_addr", conn.RemoteAddr().String()))

	return c, nil
}

func (l *QUICListener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *QUICListener) Close() error {
	if !atomic.CompareAndSwapInt32(&l.closed, 0, 1) {
		return nil
	}
	return l.listener.Close()
}
