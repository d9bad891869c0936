// Package parser decodes bulletlog files into journal documents.
//
// Only the layout produced by journal.Document.Encode is recognised. Input
// that does not fit it is rejected rather than repaired.
package parser

import (
	"bytes"
	"fmt"

	"github.com/starford/bulletlog/internal/apperr"
	"github.com/starford/bulletlog/internal/journal"
)

// Parse decodes data into a Document. Empty input yields an empty document.
// Malformed input returns an error wrapping apperr.ErrMalformed.
func Parse(data []byte) (*journal.Document, error) {
	doc := journal.New()

	// The section being filled; appended to doc when the next header or EOF arrives.
	var cur *journal.Section
	flush := func() {
		if cur != nil {
			doc.Sections = append(doc.Sections, *cur)
			cur = nil
		}
	}

	for n, line := range bytes.Split(data, []byte("\n")) {
		lineNo := n + 1
		if len(line) == 0 {
			continue
		}

		if bytes.HasPrefix(line, []byte(journal.HeaderPrefix)) {
			date, err := journal.ParseDate(string(line[len(journal.HeaderPrefix):]))
			if err != nil {
				return nil, malformed(lineNo, err.Error())
			}
			flush()
			cur = &journal.Section{Date: date}
			continue
		}

		if cur == nil {
			return nil, malformed(lineNo, "entry before first date header")
		}
		e, err := parseEntry(line)
		if err != nil {
			return nil, malformed(lineNo, err.Error())
		}
		cur.Entries = append(cur.Entries, e)
	}
	flush()

	return doc, nil
}

// parseEntry splits "<marker> <text>".
func parseEntry(line []byte) (journal.Entry, error) {
	kind, ok := journal.KindFromMarker(line[0])
	if !ok {
		return journal.Entry{}, fmt.Errorf("unknown marker %q", line[0])
	}
	if len(line) < 2 || line[1] != ' ' {
		return journal.Entry{}, fmt.Errorf("marker %q not followed by a space", line[0])
	}
	return journal.Entry{Kind: kind, Text: string(line[2:])}, nil
}

func malformed(line int, reason string) error {
	return fmt.Errorf("%w: line %d: %s", apperr.ErrMalformed, line, reason)
}
