// Package checksum computes the version tag of the journal file.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/starford/bulletlog/internal/apperr"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Check reports apperr.ErrConflict when want is set and differs from sum.
// An empty want matches any sum.
func Check(sum, want string) error {
	if want == "" || want == sum {
		return nil
	}
	return fmt.Errorf("%w: journal is at %.12s, caller expected %.12s", apperr.ErrConflict, sum, want)
}
