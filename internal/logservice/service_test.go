package logservice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/starford/bulletlog/internal/apperr"
	"github.com/starford/bulletlog/internal/checksum"
	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/sse"
	"github.com/starford/bulletlog/internal/testutil"
)

func TestAddNote_NewFile(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)

	if _, err := svc.AddNote(context.Background(), "2020-01-05", "NOTE"); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	want := "## 2020-01-05\n\n* NOTE\n\n"
	if got := testutil.ReadJournal(t, store); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestAddAcrossInvocations(t *testing.T) {
	store := testutil.TestJournal(t)
	ctx := context.Background()

	// A fresh service per call mirrors one process per command.
	steps := []struct {
		task bool
		date journal.Date
		text string
	}{
		{true, "2020-01-05", "NOTE1"},
		{true, "2020-01-05", "NOTE2"},
		{true, "2020-01-05", "NOTE3"},
		{false, "2020-01-10", "NOTE5"},
	}
	for _, st := range steps {
		svc := NewService(store)
		var err error
		if st.task {
			_, err = svc.AddTask(ctx, st.date, st.text)
		} else {
			_, err = svc.AddNote(ctx, st.date, st.text)
		}
		if err != nil {
			t.Fatalf("add %q: %v", st.text, err)
		}
	}

	want := "## 2020-01-10\n\n* NOTE5\n\n## 2020-01-05\n\n- NOTE1\n\n- NOTE2\n\n- NOTE3\n\n"
	if got := testutil.ReadJournal(t, store); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestAdd_RejectsMultilineText(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)
	_, err := svc.AddNote(context.Background(), "2020-01-05", "one\ntwo")
	if !errors.Is(err, apperr.ErrInvalidEntry) {
		t.Fatalf("err = %v, want ErrInvalidEntry", err)
	}
	if got := testutil.ReadJournal(t, store); got != "" {
		t.Errorf("file written on invalid entry: %q", got)
	}
}

func TestAdd_RejectsInvalidDate(t *testing.T) {
	svc := NewService(testutil.TestJournal(t))
	if _, err := svc.AddTask(context.Background(), "2020-1-5", "x"); !errors.Is(err, apperr.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestAdd_MalformedFileUntouched(t *testing.T) {
	store := testutil.TestJournal(t)
	_ = store.Write([]byte("hand written\n"))
	svc := NewService(store)

	if _, err := svc.AddNote(context.Background(), "2020-01-05", "x"); !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if got := testutil.ReadJournal(t, store); got != "hand written\n" {
		t.Errorf("malformed file was rewritten: %q", got)
	}
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	must := func(_ journal.Entry, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(svc.AddTask(ctx, "2020-01-05", "NOTE1"))
	must(svc.AddNote(ctx, "2020-01-05", "NOTE2"))
	must(svc.AddNote(ctx, "2020-01-10", "NOTE5"))
	must(svc.AddTask(ctx, "2020-01-10", "NOTE8"))
	must(svc.AddNote(ctx, "2020-01-25", "NOTE10"))
	must(svc.AddTask(ctx, "2020-01-25", "NOTE12"))
}

func TestCompleteTask(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)
	seed(t, svc)

	task, err := svc.CompleteTask(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if task.Text != "NOTE1" || task.Date != "2020-01-05" {
		t.Errorf("completed %+v", task)
	}

	want := "## 2020-01-25\n\n* NOTE10\n\n- NOTE12\n\n" +
		"## 2020-01-10\n\n* NOTE5\n\n- NOTE8\n\n" +
		"## 2020-01-05\n\nx NOTE1\n\n* NOTE2\n\n"
	if got := testutil.ReadJournal(t, store); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestCompleteTask_OutOfRangeLeavesFile(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)
	seed(t, svc)
	before := testutil.ReadJournal(t, store)

	if _, err := svc.CompleteTask(context.Background(), 3, ""); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if got := testutil.ReadJournal(t, store); got != before {
		t.Errorf("file changed on failed completion")
	}
}

func TestCompleteTask_IfMatch(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)
	seed(t, svc)
	ctx := context.Background()

	if _, err := svc.CompleteTask(ctx, 0, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	_, cs, err := svc.Raw(ctx)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if cs != checksum.Sum([]byte(testutil.ReadJournal(t, store))) {
		t.Fatalf("Raw checksum mismatch")
	}
	if _, err := svc.CompleteTask(ctx, 0, cs); err != nil {
		t.Fatalf("CompleteTask with current checksum: %v", err)
	}
}

func TestListTasksAndNotes(t *testing.T) {
	svc := NewService(testutil.TestJournal(t))
	seed(t, svc)
	ctx := context.Background()

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	wantTasks := []journal.Task{
		{Index: 0, Date: "2020-01-25", Text: "NOTE12"},
		{Index: 1, Date: "2020-01-10", Text: "NOTE8"},
		{Index: 2, Date: "2020-01-05", Text: "NOTE1"},
	}
	if diff := cmp.Diff(wantTasks, tasks, cmpopts.IgnoreUnexported(journal.Task{})); diff != "" {
		t.Errorf("tasks (-want +got):\n%s", diff)
	}

	notes, err := svc.ListNotes(ctx)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	wantNotes := []journal.NoteRef{
		{Date: "2020-01-25", Text: "NOTE10"},
		{Date: "2020-01-10", Text: "NOTE5"},
		{Date: "2020-01-05", Text: "NOTE2"},
	}
	if diff := cmp.Diff(wantNotes, notes); diff != "" {
		t.Errorf("notes (-want +got):\n%s", diff)
	}
}

func TestListTasks_MissingFile(t *testing.T) {
	svc := NewService(testutil.TestJournal(t))
	tasks, err := svc.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks = %+v, want none", tasks)
	}
}

func TestOnChangeEvents(t *testing.T) {
	var mu sync.Mutex
	var kinds []string
	svc := NewService(testutil.TestJournal(t), WithOnChange(func(kind string, _ map[string]any) {
		mu.Lock()
		kinds = append(kinds, kind)
		mu.Unlock()
	}))
	ctx := context.Background()

	_, _ = svc.AddTask(ctx, "2020-01-05", "a")
	_, _ = svc.CompleteTask(ctx, 0, "")
	_, _ = svc.CompleteTask(ctx, 0, "") // out of range, no event

	want := []string{sse.KindEntryAdded, sse.KindTaskCompleted}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestSearchWithIndex(t *testing.T) {
	store := testutil.TestJournal(t)
	db := testutil.TestDB(t)
	svc := NewService(store, WithIndex(db))
	seed(t, svc)
	ctx := context.Background()

	res, err := svc.Search(ctx, "NOTE12", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Date != "2020-01-25" || res[0].Kind != "task" {
		t.Fatalf("results = %+v, want the NOTE12 task", res)
	}

	changed, err := svc.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if changed {
		t.Error("index should already match the file after writes")
	}
}

func TestSearchWithoutIndex(t *testing.T) {
	svc := NewService(testutil.TestJournal(t))
	if _, err := svc.Search(context.Background(), "x", 1); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("err = %v, want ErrNoIndex", err)
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	store := testutil.TestJournal(t)
	svc := NewService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddTask(ctx, "2020-01-05", "t")
		}()
	}
	wg.Wait()

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 20 {
		t.Errorf("tasks = %d, want 20", len(tasks))
	}
}
