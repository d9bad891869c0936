package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/logservice"
	"github.com/starford/bulletlog/internal/models"
)

// AddEntryRequest is the request body for adding a note or a task.
type AddEntryRequest struct {
	Text string `json:"text" example:"call the bank" validate:"required"`
	Date string `json:"date,omitempty" example:"2020-01-05"`
}

// Validate validates the request body.
func (r *AddEntryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, validation.By(func(v interface{}) error {
			return logservice.ValidateText(v.(string))
		})),
		validation.Field(&r.Date, validation.Date(journal.DateLayout)),
	)
}

// Entry is an entry in API responses (aliased from the models layer).
type Entry = models.Entry

// Task is an open task in API responses.
type Task = models.Task

// AddEntryResponse is returned after an entry was appended.
type AddEntryResponse struct {
	Date  string `json:"date" example:"2020-01-05" validate:"required"`
	Entry Entry  `json:"entry" validate:"required"`
}

// SectionsResponse wraps the whole journal.
type SectionsResponse struct {
	Sections []models.Section `json:"sections" validate:"required"`
}

// TasksResponse wraps the open task listing.
type TasksResponse struct {
	Tasks []Task `json:"tasks" validate:"required"`
}

// NotesResponse wraps the note listing.
type NotesResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
}

// CompleteTaskResponse is returned after a task was completed.
type CompleteTaskResponse struct {
	Completed Task `json:"completed" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Date    string `json:"date" example:"2020-01-05" validate:"required"`
	Kind    string `json:"kind" example:"task" validate:"required"`
	Text    string `json:"text" example:"call the bank" validate:"required"`
	Snippet string `json:"snippet" example:"call the <b>bank</b>" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
