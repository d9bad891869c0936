package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bulletlog/internal/logservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// now supplies the date for entries posted without one; nil means time.Now.
func NewRouter(svc *logservice.Service, authEnabled bool, token string, sseHandler http.Handler, now func() time.Time) chi.Router {
	h := NewHandler(svc, now)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Whole journal.
	r.Get("/journal", h.GetJournal)
	r.Get("/sections", h.ListSections)

	// Notes and tasks.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.AddNote)
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.AddTask)
	r.Post("/tasks/{index}/complete", h.CompleteTask)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
