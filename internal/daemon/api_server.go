package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"reelsync/internal/logging"
	"reelsync/internal/workflow"
)

// StatusProvider supplies the sync loop snapshot served by the status
// endpoint.
type StatusProvider interface {
	Stats() workflow.Stats
}

// APIServer serves the local daemon API: /healthz for liveness and
// /api/status for a JSON activity snapshot.
type APIServer struct {
	bind     string
	provider StatusProvider
	logger   *slog.Logger
	started  time.Time

	server   *http.Server
	listener net.Listener
}

// NewAPIServer creates an APIServer bound to addr.
func NewAPIServer(addr string, provider StatusProvider, logger *slog.Logger) *APIServer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &APIServer{
		bind:     addr,
		provider: provider,
		logger:   logger.With(logging.String(logging.FieldComponent, "api")),
		started:  time.Now(),
	}
}

// Handler returns the API routes.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

func (s *APIServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

type statusResponse struct {
	Status string         `json:"status"`
	Uptime string         `json:"uptime"`
	Loop   workflow.Stats `json:"loop"`
}

func (s *APIServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Status: "running",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Loop:   s.provider.Stats(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("status encode failed", logging.Error(err))
	}
}

// Start begins serving in a background goroutine.
func (s *APIServer) Start() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", logging.Error(err))
		}
	}()
	s.logger.Info("api server listening", logging.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address after Start.
func (s *APIServer) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Shutdown drains the server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
