package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
	"github.com/custodia-labs/drawsync/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may take after Run's
// context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server exposes the draw store over HTTP.
type Server struct {
	draws driving.DrawService
	sync  driving.SyncService
}

// New creates a server. sync may be nil, in which case /lottery/sync
// reports 404.
func New(draws driving.DrawService, sync driving.SyncService) *Server {
	return &Server{draws: draws, sync: sync}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lottery/latest", s.handleLatest)
	mux.HandleFunc("GET /lottery/range", s.handleRange)
	mux.HandleFunc("GET /lottery/sync", s.handleSyncStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logRequests(mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	draw, err := s.draws.Latest(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDrawResponse(*draw))
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startQh")
	end := r.URL.Query().Get("endQh")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	draws, err := s.draws.Range(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]drawResponse, 0, len(draws))
	for _, d := range draws {
		out = append(out, toDrawResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		writeError(w, http.StatusNotFound, "sync not available")
		return
	}
	report, err := s.sync.Status(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no sync has run")
		return
	}
	writeJSON(w, http.StatusOK, toSyncResponse(*report))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.draws.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"draws":  count,
	})
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no draws stored")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrRangeTooWide):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("http: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// logRequests logs each request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http: %s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}
