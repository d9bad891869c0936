package journal

import (
	"bufio"
	"fmt"
	"io"
)

// Task is an open task with its global index.
type Task struct {
	Index int
	Date  Date
	Text  string

	section int
	entry   int
}

// OpenTasks numbers the open tasks from 0: sections in stored order (most
// recent first), entries in insertion order. Notes and done tasks take no
// number. The numbering is derived from the current state on every call, so
// it is shared by listing and completion.
func (d *Document) OpenTasks() []Task {
	var out []Task
	for si, s := range d.Sections {
		for ei, e := range s.Entries {
			if e.Kind != TaskOpen {
				continue
			}
			out = append(out, Task{
				Index:   len(out),
				Date:    s.Date,
				Text:    e.Text,
				section: si,
				entry:   ei,
			})
		}
	}
	return out
}

// ListTasks writes one "<index>: <text>" line per open task.
func (d *Document) ListTasks(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range d.OpenTasks() {
		if _, err := fmt.Fprintf(bw, "%d: %s\n", t.Index, t.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ListNotes writes every note as it appears in the file, "* <text>".
func (d *Document) ListNotes(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range d.Notes() {
		if _, err := fmt.Fprintf(bw, "%c %s\n", Note.Marker(), n.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
