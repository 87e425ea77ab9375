package ndarray

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/compress"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func npyFile(header string, body []byte) []byte {
	header += "\n"
	var file []byte
	file = append(file, magic...)
	file = append(file, 1, 0, byte(len(header)), 0)
	file = append(file, header...)
	return append(file, body...)
}

func TestHeader(t *testing.T) {
	a, err := FromUint8([]uint8{1, 2, 3}, []int{3})
	require.NoError(t, err)
	file := a.MarshalNPY()
	assert.Zero(t, (len(file)-3)%64)
	assert.Contains(t, string(file), "'descr': '|u1'")
	assert.Contains(t, string(file), "'shape': (3,)")

	back, err := ParseNPY(file)
	require.NoError(t, err)
	data, err := back.Uint8s()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, data)
	assert.Equal(t, []int{3}, back.Shape())

	scalar, err := FromUint8([]uint8{7}, nil)
	require.NoError(t, err)
	back, err = ParseNPY(scalar.MarshalNPY())
	require.NoError(t, err)
	assert.Empty(t, back.Shape())
	assert.Equal(t, 1, back.Size())
}

func TestFloat64RoundTrip(t *testing.T) {
	in := []float64{0.1, -2.5, math.Inf(1), 3}
	a, err := FromFloat64(in, []int{2, 2})
	require.NoError(t, err)

	s, err := a.EncodeString()
	require.NoError(t, err)
	back, err := DecodeString(s)
	require.NoError(t, err)
	assert.Equal(t, Float64, back.Kind())
	assert.Equal(t, []int{2, 2}, back.Shape())
	assert.Equal(t, 2, back.LastDim())

	got, err := back.Float64s()
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = back.Uint8s()
	assert.Error(t, err)
}

func TestFortranOrder(t *testing.T) {
	// Column-major layout of [[1 2 3] [4 5 6]].
	a, err := ParseNPY(npyFile("{'descr': '|u1', 'fortran_order': True, 'shape': (2, 3), }", []byte{1, 4, 2, 5, 3, 6}))
	require.NoError(t, err)
	data, err := a.Uint8s()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, a.Shape())
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, data)

	body := make([]byte, 0, 48)
	for _, f := range []float64{1, 4, 2, 5, 3, 6} {
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(f))
	}
	a, err = ParseNPY(npyFile("{'descr': '<f8', 'fortran_order': True, 'shape': (2, 3), }", body))
	require.NoError(t, err)
	floats, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, floats)
}

func TestBigEndianFloats(t *testing.T) {
	body := binary.BigEndian.AppendUint64(nil, math.Float64bits(1.5))
	a, err := ParseNPY(npyFile("{'descr': '>f8', 'fortran_order': False, 'shape': (1,), }", body))
	require.NoError(t, err)
	floats, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, floats)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		file []byte
	}{
		{"no magic", []byte("not numpy at all")},
		{"unsupported dtype", npyFile("{'descr': '<i4', 'fortran_order': False, 'shape': (1,), }", make([]byte, 4))},
		{"short body", npyFile("{'descr': '<f8', 'fortran_order': False, 'shape': (2,), }", make([]byte, 8))},
		{"long body", npyFile("{'descr': '|u1', 'fortran_order': False, 'shape': (2,), }", make([]byte, 3))},
		{"no shape", npyFile("{'descr': '|u1', 'fortran_order': False, }", nil)},
		{"negative dimension", npyFile("{'descr': '|u1', 'fortran_order': False, 'shape': (-1,), }", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNPY(tt.file)
			assert.Error(t, err)
		})
	}
}

func TestShapeOverflow(t *testing.T) {
	_, err := ParseNPY(npyFile("{'descr': '|u1', 'fortran_order': False, 'shape': (4294967296, 4294967296), }", nil))
	require.ErrorIs(t, err, validation.ErrMalformedTensor)

	_, err = ParseNPY(npyFile("{'descr': '<f8', 'fortran_order': False, 'shape': (2305843009213693952,), }", nil))
	require.Error(t, err)

	_, err = FromUint8(nil, []int{1 << 32, 1 << 32})
	require.ErrorIs(t, err, validation.ErrMalformedTensor)

	_, err = FromFloat64([]float64{1}, []int{2})
	require.ErrorIs(t, err, validation.ErrMalformedTensor)
}

func TestDecodeStringRejects(t *testing.T) {
	_, err := DecodeString("!!")
	require.ErrorIs(t, err, validation.ErrMalformedPayload)

	z, err := compress.Deflate([]byte("plain text"))
	require.NoError(t, err)
	a := &Array{kind: Uint8, shape: []int{}, data: []byte{0}}
	good, err := a.EncodeString()
	require.NoError(t, err)
	_, err = DecodeString(good)
	require.NoError(t, err)

	_, err = DecodeString(base64.StdEncoding.EncodeToString(z))
	require.ErrorIs(t, err, validation.ErrMalformedPayload)
}

func TestWrapperJSON(t *testing.T) {
	a, err := FromFloat64([]float64{0.1, 0.2, 0.3}, []int{3})
	require.NoError(t, err)
	w, err := Wrap(a)
	require.NoError(t, err)

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"__type__":"ndarray"`)

	var back Wrapper
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, w.Value(), back.Value())
	assert.Equal(t, 3, back.Array().LastDim())

	empty := EmptyFloat64()
	assert.Equal(t, []int{0}, empty.Array().Shape())
	assert.Equal(t, 0, empty.Array().Size())

	err = json.Unmarshal([]byte(`{"__type__": "list", "__value__": "`+w.Value()+`"}`), &back)
	require.ErrorIs(t, err, validation.ErrInvalidField)

	err = json.Unmarshal([]byte(`{"__type__": "ndarray"}`), &back)
	require.ErrorIs(t, err, validation.ErrInvalidField)

	err = json.Unmarshal([]byte(`{"__type__": "ndarray", "__value__": "AAAA"}`), &back)
	require.ErrorIs(t, err, validation.ErrMalformedPayload)
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "__value__", fe.Field)
}
