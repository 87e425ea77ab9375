package program

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// ChunkSize is the maximum number of argument sets bound per shot loop.
// The zero value is Auto: the server picks the size.
type ChunkSize int

// Auto lets the server choose a chunk size.
const Auto ChunkSize = 0

const autoLiteral = "auto"

// IsAuto reports whether c is Auto.
func (c ChunkSize) IsAuto() bool { return c == Auto }

func (c ChunkSize) String() string {
	if c.IsAuto() {
		return autoLiteral
	}
	return strconv.Itoa(int(c))
}

// Validate rejects negative sizes, which no wire form can produce but Go
// callers can.
func (c ChunkSize) Validate() error {
	if c < 0 {
		return validation.Errorf(validation.ErrInvalidField, "",
			"chunk size must be Auto or at least 1, got %d", int(c))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c ChunkSize) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsAuto() {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(int(c))), nil
}

// UnmarshalJSON accepts "auto" or an integer of at least 1.
func (c *ChunkSize) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil || s != autoLiteral {
			return validation.Errorf(validation.ErrInvalidField, "", `chunk size must be a positive integer or "auto"`)
		}
		*c = Auto
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", `chunk size must be a positive integer or "auto"`)
	}
	if n < 1 {
		return validation.Errorf(validation.ErrInvalidField, "", "input should be greater than or equal to 1")
	}
	*c = ChunkSize(n)
	return nil
}

// CheckChunkSizes reports an ErrInconsistentChunking failure when sizes mix
// Auto with explicit values. All-Auto and all-explicit lists pass, as does
// an empty list.
func CheckChunkSizes(sizes []ChunkSize) error {
	var auto, explicit bool
	for _, s := range sizes {
		if s.IsAuto() {
			auto = true
		} else {
			explicit = true
		}
	}
	if auto && explicit {
		return validation.Errorf(validation.ErrInconsistentChunking, "items",
			"some quantum program items specified an integer-valued 'chunk_size' while others specified 'auto', but all items must specify one or the other")
	}
	return nil
}
