package transport

import (
	"context"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// Sink consumes one received message. An error is logged and the feed goes on.
type Sink func(data []byte) error

// Feed pumps messages from conn into sink until the connection fails or ctx
// is cancelled. It returns nil on cancellation.
func Feed(ctx context.Context, conn Conn, sink Sink, logger log.Log) error {
	logger = logger.With(log.String("peer_id", conn.ID().String()))

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		data, err := conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err = sink(data); err != nil {
			logger.Warn("Rejected incoming message", log.Int("size", len(data)), log.Error(err))
		}
	}
}
