// Package server provides the HTTP trigger surface for Kagami.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kagami/internal/config"
	"github.com/hyperjump/kagami/internal/store"
)

// Syncer reconciles provider nodes into the store. Implemented by the
// reconcile package.
type Syncer interface {
	// HandleChange reconciles one changed node. A node that no longer
	// exists is a no-op, not an error.
	HandleChange(ctx context.Context, nodeID string) error
	// Bootstrap reconciles the whole tree under the configured root.
	Bootstrap(ctx context.Context) error
}

// Server is the HTTP server for the Kagami trigger API.
type Server struct {
	syncer Syncer
	store  store.Store
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(syncer Syncer, st store.Store, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		syncer: syncer,
		store:  st,
		config: cfg,
		logger: logger,
	}
}

// Router builds the HTTP routes. Manual triggers sit behind bearer auth when
// a trigger token is configured. Bootstrap walks the full tree and gets no
// request timeout; everything else is bounded.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	// Webhook stays open: Drive push notifications cannot carry a bearer
	// header. The relay's payload is only node ids, never content.
	r.With(middleware.Timeout(60 * time.Second)).Post("/drive/webhook", s.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/reindex/{id}", s.handleReindex)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/approvals", s.handleApprovals)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/bootstrap", s.handleBootstrap)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requireAuth rejects requests without the configured bearer token. With no
// token configured the endpoints are open.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.config.Server.TriggerToken
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			s.respondError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
