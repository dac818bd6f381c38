package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/cosmos/internal/core/observability/log"
)

type statusResponse struct {
	Seq        uint64 `json:"seq"`
	Peers      int    `json:"peers"`
	Entities   int    `json:"entities"`
	Heartbeats uint64 `json:"heartbeats"`
	Checksum   uint64 `json:"checksum"`
}

// ServeHTTP reports the latest Stats as JSON on /status.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/status" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stats := s.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statusResponse{
		Seq:        stats.Seq,
		Peers:      stats.Peers,
		Entities:   stats.Entities,
		Heartbeats: stats.Heartbeats,
		Checksum:   stats.Checksum,
	})
}

// ServeStatus serves ServeHTTP on addr until ctx is cancelled.
func (s *Server) ServeStatus(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	s.log.Info("Status endpoint started", log.String("addr", addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "status endpoint failed")
	}
	return nil
}
