// Package compress wraps the zlib streams used by the base64 payload
// envelopes.
package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Deflate zlib-compresses b.
func Deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, fmt.Errorf("compress: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultMaxInflatedBytes bounds Inflate until SetMaxInflatedBytes is called.
const DefaultMaxInflatedBytes int64 = 64 << 20

var maxInflated atomic.Int64

func init() { maxInflated.Store(DefaultMaxInflatedBytes) }

// SetMaxInflatedBytes sets the process-wide bound used by Inflate. Values
// below 1 restore the default.
func SetMaxInflatedBytes(n int64) {
	if n < 1 {
		n = DefaultMaxInflatedBytes
	}
	maxInflated.Store(n)
}

// MaxInflatedBytes returns the bound used by Inflate.
func MaxInflatedBytes() int64 { return maxInflated.Load() }

// Inflate decompresses a whole zlib stream of at most MaxInflatedBytes.
func Inflate(b []byte) ([]byte, error) {
	return InflateLimit(b, MaxInflatedBytes())
}

// InflateLimit decompresses a whole zlib stream. Streams that expand past
// limit bytes are ErrMalformedPayload failures; reading stops at limit+1.
func InflateLimit(b []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, malformed(err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, malformed(err)
	}
	if int64(len(out)) > limit {
		return nil, validation.Errorf(validation.ErrMalformedPayload, "",
			"zlib stream inflates past the %d byte limit", limit)
	}
	return out, nil
}

// InflatePrefix decompresses at most n bytes from the start of a zlib
// stream. The rest of the stream is not read.
func InflatePrefix(b []byte, n int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, malformed(err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, int64(n)))
	if err != nil {
		return nil, malformed(err)
	}
	return out, nil
}

func malformed(err error) error {
	return validation.Errorf(validation.ErrMalformedPayload, "", "invalid zlib stream: %v", err)
}
