package telemetry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /metrics, /healthz and /snapshot.
type Server struct {
	httpServer *http.Server
	exporter   *Exporter
	snapshots  SnapshotProvider
	health     HealthSource
	listener   net.Listener
	logger     logger.Logger
}

// NewServer creates a server for addr. Use "127.0.0.1:0" in tests to let
// the OS pick a port.
func NewServer(addr string, exporter *Exporter, snapshots SnapshotProvider, health HealthSource, log logger.Logger) *Server {
	s := &Server{
		exporter:  exporter,
		snapshots: snapshots,
		health:    health,
		logger:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.Handle("/metrics", promhttp.HandlerFor(exporter.Registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// Start begins listening and serving HTTP in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.New().Wrap(ErrListenFailed, err)
	}
	s.listener = ln
	s.httpServer.Addr = ln.Addr().String()

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Exporter listening")

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Exporter stopped unexpectedly")
		}
	}()

	return nil
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.New().Wrap(ErrServiceShutdown, err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body := map[string]string{"status": "ok"}
	status := http.StatusOK
	if err := s.health.LastError(); err != nil {
		body = map[string]string{"status": "error", "error": err.Error()}
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshots.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		ID         string      `json:"id"`
		CapturedAt time.Time   `json:"captured_at"`
		Records    interface{} `json:"records"`
	}{
		ID:         snap.ID(),
		CapturedAt: snap.CapturedAt(),
		Records:    snap.Records(),
	})
}
