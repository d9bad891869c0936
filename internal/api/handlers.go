package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bulletlog/internal/apperr"
	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/logservice"
	"github.com/starford/bulletlog/internal/models"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *logservice.Service
	now func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(svc *logservice.Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{svc: svc, now: now}
}

// GetJournal handles GET /api/journal.
//
//	@Summary		Raw journal file
//	@Tags			journal
//	@Produce		plain
//	@Success		200	{string}	string	"Journal text; ETag carries the checksum"
//	@Security		BearerAuth
//	@Router			/journal [get]
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	data, cs, err := h.svc.Raw(r.Context())
	if err != nil {
		h.internalError(w, "read journal failed", err)
		return
	}
	writeText(w, cs, data)
}

// ListSections handles GET /api/sections.
//
//	@Summary		Journal as date sections, most recent first
//	@Tags			journal
//	@Produce		json
//	@Success		200	{object}	SectionsResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections [get]
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		h.writeError(w, "list sections failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SectionsResponse{Sections: models.NewSections(doc)})
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		Open tasks with their completion indexes
//	@Tags			tasks
//	@Produce		json
//	@Success		200	{object}	TasksResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, "list tasks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, TasksResponse{Tasks: models.NewTasks(tasks)})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		All notes in file order
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NotesResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context())
	if err != nil {
		h.writeError(w, "list notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, NotesResponse{Notes: models.NewNotes(notes)})
}

// AddNote handles POST /api/notes.
//
//	@Summary		Append a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddEntryRequest	true	"Note to add"
//	@Success		201		{object}	AddEntryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	h.addEntry(w, r, h.svc.AddNote)
}

// AddTask handles POST /api/tasks.
//
//	@Summary		Append an open task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddEntryRequest	true	"Task to add"
//	@Success		201		{object}	AddEntryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	h.addEntry(w, r, h.svc.AddTask)
}

type addFunc func(ctx context.Context, date journal.Date, text string) (journal.Entry, error)

func (h *Handler) addEntry(w http.ResponseWriter, r *http.Request, add addFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	date := journal.DateOf(h.now())
	if req.Date != "" {
		date = journal.Date(req.Date)
	}

	entry, err := add(r.Context(), date, req.Text)
	if err != nil {
		h.writeError(w, "add entry failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, AddEntryResponse{Date: date.String(), Entry: models.NewEntry(entry)})
}

// CompleteTask handles POST /api/tasks/{index}/complete.
//
//	@Summary		Complete the open task at index
//	@Tags			tasks
//	@Produce		json
//	@Param			index		path		int		true	"Index from GET /tasks"
//	@Param			If-Match	header		string	false	"Journal checksum from GET /journal"
//	@Success		200			{object}	CompleteTaskResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{index}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	task, err := h.svc.CompleteTask(r.Context(), index, ifMatch)
	if err != nil {
		h.writeError(w, "complete task failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteTaskResponse{Completed: models.NewTask(task)})
}

// Search handles GET /api/search.
//
//	@Summary		Search entry text
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		h.writeError(w, "search failed", err)
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult(hit)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// writeError maps service errors to status codes.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, apperr.ErrOutOfRange):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrInvalidEntry), errors.Is(err, apperr.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMalformed):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, logservice.ErrNoIndex):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index not configured"))
	default:
		h.internalError(w, msg, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
