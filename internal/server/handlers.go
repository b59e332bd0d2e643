package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kagami/internal/models"
)

// startPageTokenHeader carries the next change-polling cursor alongside a
// webhook delivery.
const startPageTokenHeader = "X-Kagami-Start-Page-Token"

// webhookRequest is the change batch posted by the notification relay.
type webhookRequest struct {
	Changes []models.ChangeEvent `json:"changes"`
}

// handleWebhook processes a batch of change events. Each event is reconciled
// independently: a failing event is logged and its siblings still run. The
// response lists the node ids that reconciled cleanly.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delivery := uuid.NewString()
	s.logger.Info("webhook delivery received",
		zap.String("delivery_id", delivery),
		zap.Int("events", len(req.Changes)))

	processed := make([]string, 0, len(req.Changes))
	for _, event := range req.Changes {
		id := event.NodeID()
		if id == "" {
			s.logger.Warn("webhook event without a node id", zap.String("delivery_id", delivery))
			continue
		}
		if err := s.syncer.HandleChange(r.Context(), id); err != nil {
			s.logger.Error("change reconciliation failed",
				zap.String("delivery_id", delivery),
				zap.String("node_id", id),
				zap.Error(err))
			continue
		}
		processed = append(processed, id)
	}

	if token := r.Header.Get(startPageTokenHeader); token != "" {
		if err := s.store.RecordCursor(r.Context(), token); err != nil {
			s.logger.Error("failed to record change cursor",
				zap.String("delivery_id", delivery),
				zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"processed":   processed,
		"resource_id": r.Header.Get("X-Goog-Resource-Id"),
	})
}

// handleReindex forces a reconciliation of a single node.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("reindex request", zap.String("node_id", id))
	if err := s.syncer.HandleChange(r.Context(), id); err != nil {
		s.logger.Error("reindex failed", zap.String("node_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "reindexed"})
}

// handleBootstrap reconciles the full tree under the configured root.
func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("bootstrap requested", zap.String("root_id", s.config.Drive.RootNodeID))
	if err := s.syncer.Bootstrap(r.Context()); err != nil {
		s.logger.Error("bootstrap failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.StoreFeedback(r.Context(), payload); err != nil {
		s.logger.Error("failed to store feedback", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}

func (s *Server) handleApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := s.store.FetchPendingApprovals(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch approvals", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, approvals)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"has_embeddings": s.config.HasEmbeddings(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
