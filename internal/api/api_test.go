package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/bulletlog/internal/logservice"
	"github.com/starford/bulletlog/internal/models"
	"github.com/starford/bulletlog/internal/storage"
	"github.com/starford/bulletlog/internal/testutil"
)

var fixedNow = func() time.Time { return time.Date(2020, 1, 5, 9, 30, 0, 0, time.UTC) }

// testEnv sets up a temp journal, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*logservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithStore(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvWithStore(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*logservice.Service, http.Handler, storage.Provider) {
	t.Helper()
	store := testutil.TestJournal(t)
	db := testutil.TestDB(t)
	svc := logservice.NewService(store, logservice.WithIndex(db))
	router := NewRouter(svc, authEnabled, authToken, sseHandler, fixedNow)
	return svc, router, store
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddNoteAndTaskDefaultDate(t *testing.T) {
	_, router, store := testEnvWithStore(t, false, "", nil)

	w := do(t, router, http.MethodPost, "/notes", map[string]string{"text": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add note status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AddEntryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := AddEntryResponse{Date: "2020-01-05", Entry: models.Entry{Kind: "note", Text: "hello"}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	w = do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "call bank"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add task status = %d, body = %s", w.Code, w.Body.String())
	}

	got := testutil.ReadJournal(t, store)
	if got != "## 2020-01-05\n\n* hello\n\n- call bank\n\n" {
		t.Errorf("journal = %q", got)
	}
}

func TestAddEntryExplicitDate(t *testing.T) {
	_, router, store := testEnvWithStore(t, false, "", nil)

	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "newer", "date": "2020-01-06"})
	w := do(t, router, http.MethodPost, "/notes", map[string]string{"text": "older", "date": "2020-01-04"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	got := testutil.ReadJournal(t, store)
	want := "## 2020-01-06\n\n* newer\n\n## 2020-01-04\n\n* older\n\n"
	if got != want {
		t.Errorf("journal = %q, want %q", got, want)
	}
}

func TestAddEntryValidation(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name string
		body any
	}{
		{"empty text", map[string]string{"text": ""}},
		{"newline", map[string]string{"text": "a\nb"}},
		{"bad date", map[string]string{"text": "a", "date": "2020-13-01"}},
		{"not json", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/tasks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestListTasksAndComplete(t *testing.T) {
	_, router := testEnv(t, "")

	for _, text := range []string{"one", "two", "three"} {
		do(t, router, http.MethodPost, "/tasks", map[string]string{"text": text})
	}

	w := do(t, router, http.MethodPost, "/tasks/1/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body = %s", w.Code, w.Body.String())
	}
	var done CompleteTaskResponse
	_ = json.Unmarshal(w.Body.Bytes(), &done)
	if done.Completed.Text != "two" {
		t.Errorf("completed = %+v, want two", done.Completed)
	}

	w = do(t, router, http.MethodGet, "/tasks", nil)
	var list TasksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	want := []Task{
		{Index: 0, Date: "2020-01-05", Text: "one"},
		{Index: 1, Date: "2020-01-05", Text: "three"},
	}
	if diff := cmp.Diff(want, list.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteTaskErrors(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "only"})

	tests := []struct {
		target string
		want   int
	}{
		{"/tasks/abc/complete", http.StatusBadRequest},
		{"/tasks/1/complete", http.StatusNotFound},
		{"/tasks/-1/complete", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := do(t, router, http.MethodPost, tt.target, nil)
		if w.Code != tt.want {
			t.Errorf("POST %s = %d, want %d", tt.target, w.Code, tt.want)
		}
	}
}

func TestCompleteTaskIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "a"})
	do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "b"})

	w := do(t, router, http.MethodGet, "/journal", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	if _, err := strconv.Unquote(etag); err != nil {
		t.Fatalf("ETag %q not quoted: %v", etag, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tasks/0/complete", nil)
	req.Header.Set("If-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("complete with current checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// The file changed, so the old checksum is stale.
	req = httptest.NewRequest(http.MethodPost, "/tasks/0/complete", nil)
	req.Header.Set("If-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("complete with stale checksum = %d, want 409", w.Code)
	}
}

func TestGetJournalAndSections(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "n"})
	do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "t"})

	w := do(t, router, http.MethodGet, "/journal", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("journal status = %d", w.Code)
	}
	if got := w.Body.String(); got != "## 2020-01-05\n\n* n\n\n- t\n\n" {
		t.Errorf("journal = %q", got)
	}

	w = do(t, router, http.MethodGet, "/sections", nil)
	var resp SectionsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	want := []models.Section{{
		Date:    "2020-01-05",
		Entries: []models.Entry{{Kind: "note", Text: "n"}, {Kind: "task", Text: "t"}},
	}}
	if diff := cmp.Diff(want, resp.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "first", "date": "2020-01-04"})
	do(t, router, http.MethodPost, "/tasks", map[string]string{"text": "skip"})
	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "second"})

	w := do(t, router, http.MethodGet, "/notes", nil)
	var resp NotesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	want := []models.Note{
		{Date: "2020-01-05", Text: "second"},
		{Date: "2020-01-04", Text: "first"},
	}
	if diff := cmp.Diff(want, resp.Notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedJournal(t *testing.T) {
	_, router, store := testEnvWithStore(t, false, "", nil)
	if err := store.Write([]byte("? nope\n")); err != nil {
		t.Fatal(err)
	}
	w := do(t, router, http.MethodGet, "/tasks", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "golang rocks"})
	do(t, router, http.MethodPost, "/notes", map[string]string{"text": "unrelated"})

	w := do(t, router, http.MethodGet, "/search?q=golang", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Text != "golang rocks" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search without q = %d, want 400", w.Code)
	}
}

func TestSearchWithoutIndex(t *testing.T) {
	svc := logservice.NewService(testutil.TestJournal(t))
	router := NewRouter(svc, false, "", nil, fixedNow)
	w := do(t, router, http.MethodGet, "/search?q=x", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	w := do(t, router, http.MethodGet, "/tasks", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/tasks", nil)
	if w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

// stubSSE writes headers and blocks until the request context is done.
var stubSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router, _ := testEnvWithStore(t, true, "tok", stubSSE)
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE without token = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router, _ := testEnvWithStore(t, true, "tok", stubSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
