package transport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

// Listen starts a listener of the given kind. path only applies to websocket.
func Listen(kind Kind, addr, path string, logger log.Log) (Listener, error) {
	switch kind {
	case KindWebsocket:
		l, err := ListenWebsocket(addr, path, logger)
		if err != nil {
			return nil, err
		}
		return l, nil
	case KindQUIC:
		tlsConfig, err := SelfSignedTLS()
		if err != nil {
			return nil, err
		}
		l, err := ListenQUIC(addr, tlsConfig, logger)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Dial connects to a listener started by Listen with the same arguments.
func Dial(ctx context.Context, kind Kind, addr, path string) (Conn, error) {
	switch kind {
	case KindWebsocket:
		u := url.URL{Scheme: "ws", Host: addr, Path: path}
		conn, err := DialWebsocket(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return conn, nil
	case KindQUIC:
		conn, err := DialQUIC(ctx, addr, ClientTLS())
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
