package http

import (
	"encoding/json"
	"net/http"

	"municipal-tasks/internal/core/ports"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handlers serves the dashboard feed: pull-style reads of the reconciled
// board plus the deletion-intent endpoints the task screens call.
type Handlers struct {
	board ports.BoardUseCases
	log   *zap.Logger
}

func NewHandlers(board ports.BoardUseCases, log *zap.Logger) *Handlers {
	if board == nil {
		log.Fatal("board service is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &Handlers{
		board: board,
		log:   log,
	}
}

func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) GetBoard(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.board.State())
}

func (h *Handlers) GetProgress(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.board.State().Progress)
}

func (h *Handlers) MarkDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}
	h.log.Info("http: delete intent", zap.String("task_id", id))
	h.board.MarkDeleting(id)
	respondJSON(w, http.StatusAccepted, map[string]string{"task_id": id, "state": "deleting"})
}

func (h *Handlers) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}
	h.log.Info("http: delete confirmed", zap.String("task_id", id))
	h.board.ConfirmDelete(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]string{"task_id": id, "state": "deleted"})
}

func (h *Handlers) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}
	h.log.Info("http: delete restored", zap.String("task_id", id))
	h.board.RestoreDeleted(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]string{"task_id": id, "state": "restored"})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
