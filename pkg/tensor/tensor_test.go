package tensor

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func TestRoundTripAllDTypes(t *testing.T) {
	shape := []int{4, 1, 2, 2}

	f := make([]float64, 16)
	u := make([]uint8, 16)
	b := make([]bool, 16)
	for i := range f {
		f[i] = float64(i)
		u[i] = uint8(i)
		b[i] = i != 0
	}

	for _, tc := range []struct {
		name  string
		in    any
		dtype DType
	}{
		{"f64", f, Float64},
		{"u8", u, Uint8},
		{"bool", b, Bool},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Encode(tc.in, shape)
			require.NoError(t, err)
			assert.Equal(t, tc.dtype, rec.DType())
			assert.Equal(t, shape, rec.Shape())

			out, err := rec.Decode()
			require.NoError(t, err)
			if diff := cmp.Diff(tc.in, out); diff != "" {
				t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
			}

			again, err := rec.Decode()
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}

func TestFloat64ScenarioIsBitExact(t *testing.T) {
	rec, err := Encode([]float64{0.1, 0.2, 0.3}, []int{3})
	require.NoError(t, err)
	assert.Equal(t, Float64, rec.DType())

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(raw, &back))
	got, err := back.Float64s()
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []float64{0.1, 0.2, 0.3} {
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got[i]))
	}
}

func TestRanksAndEmpty(t *testing.T) {
	for _, shape := range [][]int{{}, {0}, {5}, {2, 3}, {2, 0, 3}, {1, 2, 3, 1}} {
		n := 1
		for _, d := range shape {
			n *= d
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(i) * 1.5
		}
		rec, err := Encode(vals, shape)
		require.NoError(t, err, "shape %v", shape)
		assert.Equal(t, len(shape), rec.Rank())
		got, err := rec.Float64s()
		require.NoError(t, err)
		assert.Equal(t, vals, got)
	}
}

func TestBoolPaddingDiscarded(t *testing.T) {
	in := []bool{true, false, true, true, false, false, true, false, true, true, false}
	rec, err := Encode(in, []int{11})
	require.NoError(t, err)

	raw := rec.raw
	require.Len(t, raw, 2)
	assert.Equal(t, byte(0b01001101), raw[0])
	assert.Equal(t, byte(0b00000011), raw[1])

	got, err := rec.Bools()
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestBoolPaddingBitsAreNotInspected(t *testing.T) {
	// 0xff carries five set padding bits beyond the three elements.
	rec, err := New("/w==", []int{3}, Bool)
	require.NoError(t, err)
	got, err := rec.Bools()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, got)
}

func TestUnsupportedDType(t *testing.T) {
	_, err := Encode([]int32{1, 2}, []int{2})
	assert.ErrorIs(t, err, validation.ErrUnsupportedDtype)

	_, err = Encode([]complex128{1}, []int{1})
	assert.ErrorIs(t, err, validation.ErrUnsupportedDtype)
}

func TestEncodeShapeMismatch(t *testing.T) {
	_, err := Encode([]float64{1, 2, 3}, []int{2, 2})
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)

	_, err = Encode([]float64{}, []int{-1})
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)
}

func TestTruncatedDataIsMalformed(t *testing.T) {
	for _, in := range []any{
		[]float64{0.1, 0.2, 0.3},
		[]uint8{1, 2, 3, 4, 5},
		[]bool{true, false, true, true, false, true, false, true, true},
	} {
		var shape []int
		switch v := in.(type) {
		case []float64:
			shape = []int{len(v)}
		case []uint8:
			shape = []int{len(v)}
		case []bool:
			shape = []int{len(v)}
		}
		rec, err := Encode(in, shape)
		require.NoError(t, err)

		data := rec.Data()
		_, err = New(data[:len(data)-1], shape, rec.DType())
		assert.ErrorIs(t, err, validation.ErrMalformedTensor, "dtype %s", rec.DType())
	}
}

func TestLengthDisagreement(t *testing.T) {
	rec, err := Encode([]uint8{1, 2, 3, 4}, []int{4})
	require.NoError(t, err)

	_, err = New(rec.Data(), []int{5}, Uint8)
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)

	_, err = New(rec.Data(), []int{4}, Float64)
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)

	_, err = New(rec.Data(), []int{4}, DType("i32"))
	assert.ErrorIs(t, err, validation.ErrInvalidField)
}

func TestShapeOverflow(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		dtype DType
	}{
		{"f64 byte length wraps", []int{1 << 61}, Float64},
		{"u8 element count wraps", []int{1 << 32, 1 << 32}, Uint8},
		{"bool element count wraps", []int{1 << 40, 1 << 40}, Bool},
		{"overflow after a unit axis", []int{1, 1 << 62, 4}, Uint8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("", tt.shape, tt.dtype)
			assert.ErrorIs(t, err, validation.ErrMalformedTensor)
		})
	}

	_, err := Encode([]uint8{}, []int{1 << 32, 1 << 32})
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)

	n, err := NumElements([]int{1 << 62, 1 << 62, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUnmarshalValidates(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"data": "AAAA", "shape": [4], "dtype": "u8"}`), &rec)
	assert.ErrorIs(t, err, validation.ErrMalformedTensor)

	err = json.Unmarshal([]byte(`{"data": "AAAA", "shape": [3]}`), &rec)
	assert.ErrorIs(t, err, validation.ErrInvalidField)

	require.NoError(t, json.Unmarshal([]byte(`{"data": "AAAA", "shape": [3], "dtype": "u8"}`), &rec))
	assert.Equal(t, []int{3}, rec.Shape())
	assert.Equal(t, 3, rec.LastDim())
}

func TestF64DefaultsAndRestrictsDType(t *testing.T) {
	var f F64
	require.NoError(t, json.Unmarshal([]byte(`{"data": "", "shape": [0]}`), &f))
	assert.Equal(t, Float64, f.DType())
	assert.Equal(t, 0, f.LastDim())

	err := json.Unmarshal([]byte(`{"data": "AAAA", "shape": [3], "dtype": "u8"}`), &f)
	assert.ErrorIs(t, err, validation.ErrInvalidField)

	enc, err := EncodeF64([]float64{1, 2}, []int{1, 2})
	require.NoError(t, err)
	raw, err := json.Marshal(struct {
		Args F64 `json:"args"`
	}{Args: *enc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"args": {"data": "AAAAAAAA8D8AAAAAAAAAQA==", "shape": [1, 2], "dtype": "f64"}}`, string(raw))
}

func TestScalarLastDimIsZero(t *testing.T) {
	rec, err := Encode([]float64{4.2}, []int{})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.LastDim())
	assert.Equal(t, 1, rec.Size())
}
