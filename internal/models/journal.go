// Package models defines the JSON views of journal data served by the API
// and the MCP server.
package models

import "github.com/starford/bulletlog/internal/journal"

// Entry is one logged line.
type Entry struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Section is all entries for one date.
type Section struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Task is an open task with its global index.
type Task struct {
	Index int    `json:"index"`
	Date  string `json:"date"`
	Text  string `json:"text"`
}

// Note is a note with the date it was logged on.
type Note struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// NewSections converts a document, keeping section and entry order.
func NewSections(doc *journal.Document) []Section {
	out := make([]Section, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		sec := Section{Date: s.Date.String(), Entries: make([]Entry, 0, len(s.Entries))}
		for _, e := range s.Entries {
			sec.Entries = append(sec.Entries, NewEntry(e))
		}
		out = append(out, sec)
	}
	return out
}

// NewEntry converts a single entry.
func NewEntry(e journal.Entry) Entry {
	return Entry{Kind: e.Kind.String(), Text: e.Text}
}

// NewTasks converts resolver output.
func NewTasks(tasks []journal.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = NewTask(t)
	}
	return out
}

// NewTask converts one task.
func NewTask(t journal.Task) Task {
	return Task{Index: t.Index, Date: t.Date.String(), Text: t.Text}
}

// NewNotes converts note references.
func NewNotes(notes []journal.NoteRef) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = Note{Date: n.Date.String(), Text: n.Text}
	}
	return out
}
