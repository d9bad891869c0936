// Package journal holds the in-memory model of a bulletlog file: date sections
// of notes and tasks, the operations applied to them, and their canonical
// byte layout.
package journal

import (
	"fmt"

	"github.com/starford/bulletlog/internal/apperr"
)

// Entry is one logged line.
type Entry struct {
	Kind Kind
	Text string
}

// Section groups the entries logged on one date, oldest first.
type Section struct {
	Date    Date
	Entries []Entry
}

// Document is a whole journal file. Sections are kept in descending date order.
// The zero value is an empty journal.
type Document struct {
	Sections []Section
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Append adds an entry to the section for date, creating and placing the
// section if the date has not been logged yet.
func (d *Document) Append(date Date, kind Kind, text string) {
	e := Entry{Kind: kind, Text: text}

	for i := range d.Sections {
		if d.Sections[i].Date == date {
			d.Sections[i].Entries = append(d.Sections[i].Entries, e)
			return
		}
	}

	at := len(d.Sections)
	for i, s := range d.Sections {
		if s.Date.Before(date) {
			at = i
			break
		}
	}

	d.Sections = append(d.Sections, Section{})
	copy(d.Sections[at+1:], d.Sections[at:])
	d.Sections[at] = Section{Date: date, Entries: []Entry{e}}
}

// Complete marks the open task at the given global index as done and returns
// its position. The document is unchanged when index is out of range.
func (d *Document) Complete(index int) (Task, error) {
	tasks := d.OpenTasks()
	if index < 0 || index >= len(tasks) {
		return Task{}, fmt.Errorf("%w: %d (open tasks: %d)", apperr.ErrOutOfRange, index, len(tasks))
	}
	t := tasks[index]
	d.Sections[t.section].Entries[t.entry].Kind = TaskDone
	return t, nil
}

// Notes returns every note in file order.
func (d *Document) Notes() []NoteRef {
	var out []NoteRef
	for _, s := range d.Sections {
		for _, e := range s.Entries {
			if e.Kind == Note {
				out = append(out, NoteRef{Date: s.Date, Text: e.Text})
			}
		}
	}
	return out
}

// NoteRef is a note together with the date it was logged on.
type NoteRef struct {
	Date Date
	Text string
}

// Len returns the total number of entries across all sections.
func (d *Document) Len() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Entries)
	}
	return n
}
