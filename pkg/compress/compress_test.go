package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func TestRoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte("QISKIT"), 100)
	z, err := Deflate(in)
	require.NoError(t, err)
	assert.Less(t, len(z), len(in))

	out, err := Inflate(z)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	head, err := InflatePrefix(z, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("QISKITQI"), head)

	short, err := InflatePrefix(z, 10_000)
	require.NoError(t, err)
	assert.Len(t, short, len(in))
}

func TestGarbage(t *testing.T) {
	_, err := Inflate([]byte("definitely not zlib"))
	require.ErrorIs(t, err, validation.ErrMalformedPayload)

	_, err = InflatePrefix([]byte{0x78}, 4)
	require.ErrorIs(t, err, validation.ErrMalformedPayload)

	z, err := Deflate([]byte("abcdefgh"))
	require.NoError(t, err)
	_, err = Inflate(z[:len(z)-3])
	require.ErrorIs(t, err, validation.ErrMalformedPayload)
}

func TestInflateLimit(t *testing.T) {
	zeros := make([]byte, 4<<20)
	z, err := Deflate(zeros)
	require.NoError(t, err)
	require.Less(t, len(z), 64<<10)

	_, err = InflateLimit(z, 1<<20)
	require.ErrorIs(t, err, validation.ErrMalformedPayload)
	assert.Contains(t, err.Error(), "limit")

	out, err := InflateLimit(z, int64(len(zeros)))
	require.NoError(t, err)
	assert.Len(t, out, len(zeros))
}

func TestInflateHonorsProcessLimit(t *testing.T) {
	t.Cleanup(func() { SetMaxInflatedBytes(0) })

	z, err := Deflate(make([]byte, 8<<10))
	require.NoError(t, err)

	SetMaxInflatedBytes(4 << 10)
	assert.EqualValues(t, 4<<10, MaxInflatedBytes())
	_, err = Inflate(z)
	require.ErrorIs(t, err, validation.ErrMalformedPayload)

	SetMaxInflatedBytes(0)
	assert.Equal(t, DefaultMaxInflatedBytes, MaxInflatedBytes())
	out, err := Inflate(z)
	require.NoError(t, err)
	assert.Len(t, out, 8<<10)
}
