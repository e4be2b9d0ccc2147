package http

import "github.com/go-chi/chi/v5"

// MountRoutes registers the dashboard feed routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/board", h.GetBoard)
		r.Get("/board/progress", h.GetProgress)
		r.Post("/board/tasks/{id}/delete-intent", h.MarkDelete)
		r.Post("/board/tasks/{id}/delete-confirm", h.ConfirmDelete)
		r.Post("/board/tasks/{id}/restore", h.Restore)
		r.Get("/ws", h.HandleFeed)
	})
}
