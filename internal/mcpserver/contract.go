package mcpserver

// FormatContract describes the journal file layout for LLM consumers that
// read or edit the file directly.
const FormatContract = `# bulletlog Journal Format

The journal is a single UTF-8 text file, by default named ` + "`" + `.BULLETLOG` + "`" + `.

## Structure

` + "```" + `
## 2020-01-06

* a note

- an open task

x a completed task

## 2020-01-05

- an older task

` + "```" + `

## Rules

1. A line starting with ` + "`" + `## ` + "`" + ` opens a date section. The date is ` + "`" + `YYYY-MM-DD` + "`" + `.
2. Sections are ordered most recent date first. New dates are inserted in order.
3. Each entry is one line: a marker, one space, then the text.
4. Markers: ` + "`" + `*` + "`" + ` note, ` + "`" + `-` + "`" + ` open task, ` + "`" + `x` + "`" + ` completed task.
5. Every header and entry is followed by one blank line.
6. Entry text is a single line. It is stored verbatim, including spaces.
7. An entry before the first header, or an unknown marker, makes the file malformed
   and every command refuses to rewrite it.

## Task indexes

Open tasks are numbered from 0 in file order (newest section first, top to
bottom). The numbering shifts whenever a task is added or completed, so call
` + "`" + `list_tasks` + "`" + ` again before ` + "`" + `complete_task` + "`" + `.
`
