package transport

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

var _ Conn = (*WebsocketConn)(nil)

// WebsocketConn carries one message per websocket binary frame.
type WebsocketConn struct {
	id     uuid.UUID
	conn   *websocket.Conn
	closed int32

	// gorilla allows one concurrent writer
	writeMu sync.Mutex
}

func newWebsocketConn(conn *websocket.Conn) *WebsocketConn {
	conn.SetReadLimit(MaxFrameSize)
	return &WebsocketConn{
		id:   uuid.New(),
		conn: conn,
	}
}

func (c *WebsocketConn) ID() uuid.UUID {
	return c.id
}

func (c *WebsocketConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *WebsocketConn) Send(ctx context.Context, data []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

// Receive blocks until a message arrives, the context deadline passes or the
// connection is closed.
func (c *WebsocketConn) Receive(ctx context.Context) ([]byte, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetReadDeadline(deadline)

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read message")
		}
		if kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *WebsocketConn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.conn.Close()
}

// DialWebsocket connects to a WebsocketListener at url (ws:// or wss://).
func DialWebsocket(ctx context.Context, url string) (*WebsocketConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", url)
	}
	return newWebsocketConn(conn), nil
}

var _ Listener = (*WebsocketListener)(nil)

// WebsocketListener upgrades HTTP requests and hands the connections to
// Accept. It is an http.Handler, so it can be mounted on any server.
type WebsocketListener struct {
	upgrader websocket.Upgrader
	log      log.Log

	accepted chan *WebsocketConn
	done     chan struct{}
	once     sync.Once

	server   *http.Server
	listener net.Listener
}

func NewWebsocketListener(logger log.Log) *WebsocketListener {
	return &WebsocketListener{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:      logger.With(log.String("transport", string(KindWebsocket))),
		accepted: make(chan *WebsocketConn, 16),
		done:     make(chan struct{}),
	}
}

// ListenWebsocket serves a WebsocketListener at path on addr.
func ListenWebsocket(addr, path string, logger log.Log) (*WebsocketListener, error) {
	l := NewWebsocketListener(logger)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle(path, l)

	l.listener = listener
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := l.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.log.Error("Websocket server stopped", log.Error(err))
		}
	}()

	l.log.Info("Websocket listener started", log.String("addr", listener.Addr().String()), log.String("path", path))

	return l, nil
}

func (l *WebsocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warn("Websocket upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}

	wc := newWebsocketConn(conn)

	select {
	case l.accepted <- wc:
		l.log.Debug("Websocket connection accepted",
			log.String("connection_id", wc.ID().String()),
			log.String("remote_addr", r.RemoteAddr))
	case <-l.done:
		_ = wc.Close()
	case <-r.Context().Done():
		_ = wc.Close()
	}
}

func (l *WebsocketListener) Accept(ctx context.Context) (Conn, error) {
	select {
	case conn := <-l.accepted:
		return conn, nil
	case <-l.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Addr is nil unless the listener was started by ListenWebsocket.
func (l *WebsocketListener) Addr() net.Addr {
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

func (l *WebsocketListener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		if l.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err = l.server.Shutdown(ctx)
		}
	})
	return err
}
