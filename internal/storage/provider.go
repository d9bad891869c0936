// Package storage reads and replaces the journal file on disk.
package storage

// Provider is the interface for whole-file journal access.
type Provider interface {
	// Read returns the full journal contents. A missing file reads as empty.
	Read() ([]byte, error)
	// Write replaces the journal contents in one step.
	Write(content []byte) error
	// Path returns the absolute path of the journal file.
	Path() string
}
