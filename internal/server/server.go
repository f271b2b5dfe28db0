// Package server exposes the WebSocket session endpoint plus health and
// metrics routes, and owns graceful shutdown of the listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gramseva/vaani/pkg/protocol"
	"github.com/gramseva/vaani/pkg/session"
	"github.com/gramseva/vaani/pkg/version"
)

// Config holds the listener settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server is the HTTP front of the orchestrator.
type Server struct {
	cfg      Config
	manager  *session.Manager
	logger   *slog.Logger
	upgrader websocket.Upgrader
	http     *http.Server
}

// New creates a server. The gatherer backs /metrics; pass nil to use the
// default Prometheus registry.
func New(cfg Config, manager *session.Manager, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:     cfg,
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The app clients connect from native webviews; origin checks
			// happen upstream at the gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	// Closing the sessions tears down their connections, which unblocks the
	// per-connection read loops so Shutdown can drain.
	for _, sess := range s.manager.Registry().Snapshot() {
		s.manager.CloseSession(sess.ID, "server shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	notifier := newConnNotifier(conn, s.logger)
	go notifier.writePump()

	sess := s.manager.CreateSession(notifier)
	defer s.manager.CloseSession(sess.ID, "client disconnect")

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("connection dropped",
					slog.String("session_id", sess.ID),
					slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			notifier.Send(protocol.NewError("invalid message: not valid JSON"))
			continue
		}

		if err := s.manager.Dispatch(r.Context(), sess.ID, msg); err != nil {
			if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionClosed) {
				// The session is gone (evicted or closed); drop the connection.
				s.logger.Debug("dispatch ended connection",
					slog.String("session_id", sess.ID),
					slog.String("error", err.Error()))
				return
			}
			s.logger.Warn("dispatch failed",
				slog.String("session_id", sess.ID),
				slog.String("type", msg.Type),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"version":        version.Version,
		"activeSessions": s.manager.Registry().Len(),
	})
}
