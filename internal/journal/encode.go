package journal

import (
	"bufio"
	"bytes"
	"io"
)

// HeaderPrefix opens a section line.
const HeaderPrefix = "## "

// Encode writes the canonical layout of d:
//
//	## <date>
//	<blank>
//	<marker> <text>
//	<blank>
//
// repeated for every entry and section. An empty document writes nothing.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range d.Sections {
		bw.WriteString(HeaderPrefix)
		bw.WriteString(string(s.Date))
		bw.WriteString("\n\n")
		for _, e := range s.Entries {
			bw.WriteByte(e.Kind.Marker())
			bw.WriteByte(' ')
			bw.WriteString(e.Text)
			bw.WriteString("\n\n")
		}
	}
	return bw.Flush()
}

// Bytes returns the encoded document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Encode(&buf)
	return buf.Bytes()
}
