// Package ndarray reads and writes NumPy arrays in the .npy container, and
// the runtime wrapper that carries one as base64 of a zlib-compressed .npy
// file: {"__type__": "ndarray", "__value__": "..."}.
//
// Only uint8 and float64 element types are understood. Arrays are kept in
// C order with little-endian elements whatever the layout of the file.
package ndarray

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/compress"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Kind is an element type, named by its NumPy type code.
type Kind string

const (
	Uint8   Kind = "u1"
	Float64 Kind = "f8"
)

func (k Kind) size() int {
	if k == Float64 {
		return 8
	}
	return 1
}

func (k Kind) descr() string {
	if k == Float64 {
		return "<f8"
	}
	return "|u1"
}

// Array is an immutable n-dimensional array.
type Array struct {
	kind  Kind
	shape []int
	data  []byte
}

// FromUint8 builds a uint8 array from C-ordered values.
func FromUint8(values []uint8, shape []int) (*Array, error) {
	if err := checkCount(len(values), shape); err != nil {
		return nil, err
	}
	return &Array{kind: Uint8, shape: clone(shape), data: append([]byte(nil), values...)}, nil
}

// FromFloat64 builds a float64 array from C-ordered values.
func FromFloat64(values []float64, shape []int) (*Array, error) {
	if err := checkCount(len(values), shape); err != nil {
		return nil, err
	}
	data := make([]byte, 8*len(values))
	for i, f := range values {
		binary.LittleEndian.PutUint64(data[8*i:], math.Float64bits(f))
	}
	return &Array{kind: Float64, shape: clone(shape), data: data}, nil
}

func checkCount(n int, shape []int) error {
	want, err := tensor.NumElements(shape)
	if err != nil {
		return err
	}
	if n != want {
		return validation.Errorf(validation.ErrMalformedTensor, "",
			"%d values cannot fill shape %v", n, shape)
	}
	return nil
}

func clone(shape []int) []int {
	if shape == nil {
		return []int{}
	}
	return append([]int(nil), shape...)
}

// Kind returns the element type.
func (a *Array) Kind() Kind { return a.kind }

// Shape returns a copy of the shape.
func (a *Array) Shape() []int { return clone(a.shape) }

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.data) / a.kind.size() }

// LastDim returns the size of the trailing axis, or 0 for a rank-0 array.
func (a *Array) LastDim() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[len(a.shape)-1]
}

// Uint8s returns the elements of a uint8 array.
func (a *Array) Uint8s() ([]uint8, error) {
	if a.kind != Uint8 {
		return nil, fmt.Errorf("ndarray: %s array read as u1", a.kind)
	}
	return append([]uint8(nil), a.data...), nil
}

// Float64s returns the elements of a float64 array.
func (a *Array) Float64s() ([]float64, error) {
	if a.kind != Float64 {
		return nil, fmt.Errorf("ndarray: %s array read as f8", a.kind)
	}
	out := make([]float64, len(a.data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.data[8*i:]))
	}
	return out, nil
}

var magic = []byte("\x93NUMPY")

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// MarshalNPY writes a version 1.0 .npy file.
func (a *Array) MarshalNPY() []byte {
	dims := make([]string, len(a.shape))
	for i, d := range a.shape {
		dims[i] = strconv.Itoa(d)
	}
	tuple := strings.Join(dims, ", ")
	if len(a.shape) == 1 {
		tuple += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", a.kind.descr(), tuple)
	// magic(6) + version(2) + length(2) + header + '\n', padded to 64 bytes.
	total := len(magic) + 4 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Grow(len(magic) + 4 + len(header) + len(a.data))
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(a.data)
	return buf.Bytes()
}

// ParseNPY reads a .npy file of format version 1, 2 or 3.
func ParseNPY(b []byte) (*Array, error) {
	if len(b) < len(magic)+2 || !bytes.Equal(b[:len(magic)], magic) {
		return nil, fmt.Errorf("not an npy file")
	}
	major := b[len(magic)]
	rest := b[len(magic)+2:]
	var headerLen int
	switch major {
	case 1:
		if len(rest) < 2 {
			return nil, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint16(rest))
		rest = rest[2:]
	case 2, 3:
		if len(rest) < 4 {
			return nil, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(rest))
		rest = rest[4:]
	default:
		return nil, fmt.Errorf("unsupported npy format version %d", major)
	}
	if len(rest) < headerLen {
		return nil, fmt.Errorf("truncated npy header")
	}
	header, body := string(rest[:headerLen]), rest[headerLen:]

	m := descrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("npy header has no descr")
	}
	var (
		kind      Kind
		bigEndian bool
	)
	switch m[1] {
	case "|u1", "<u1", ">u1", "u1", "=u1", "|B", "B":
		kind = Uint8
	case "<f8", "=f8", "f8", "<d", "d":
		kind = Float64
	case ">f8", ">d":
		kind, bigEndian = Float64, true
	default:
		return nil, fmt.Errorf("unsupported npy dtype %s", m[1])
	}
	fortran := false
	if f := fortranRe.FindStringSubmatch(header); f != nil {
		fortran = f[1] == "True"
	}
	s := shapeRe.FindStringSubmatch(header)
	if s == nil {
		return nil, fmt.Errorf("npy header has no shape")
	}
	shape := []int{}
	for _, part := range strings.Split(s[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid npy dimension %q", part)
		}
		shape = append(shape, d)
	}
	n, err := tensor.NumElements(shape)
	if err != nil {
		return nil, fmt.Errorf("npy shape %v: %w", shape, err)
	}
	if n > len(body)/kind.size() || len(body) != n*kind.size() {
		return nil, fmt.Errorf("npy body has %d bytes, shape %v of %s needs %d elements", len(body), shape, kind, n)
	}
	data := append([]byte(nil), body...)
	if bigEndian {
		for i := 0; i < len(data); i += 8 {
			binary.LittleEndian.PutUint64(data[i:], binary.BigEndian.Uint64(data[i:]))
		}
	}
	if fortran && len(shape) > 1 {
		data = fortranToC(data, shape, kind.size())
	}
	return &Array{kind: kind, shape: shape, data: data}, nil
}

// fortranToC reorders a column-major buffer of elements of the given size
// into row-major order.
func fortranToC(data []byte, shape []int, size int) []byte {
	out := make([]byte, len(data))
	idx := make([]int, len(shape))
	for c := 0; c < len(out)/size; c++ {
		f, stride := 0, 1
		for k := range shape {
			f += idx[k] * stride
			stride *= shape[k]
		}
		copy(out[c*size:(c+1)*size], data[f*size:(f+1)*size])
		for k := len(shape) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return out
}

// EncodeString returns base64 of the zlib-compressed .npy file.
func (a *Array) EncodeString() (string, error) {
	z, err := compress.Deflate(a.MarshalNPY())
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(z), nil
}

// DecodeString is the inverse of EncodeString. Inflation is bounded by
// compress.MaxInflatedBytes.
func DecodeString(s string) (*Array, error) {
	z, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, validation.Errorf(validation.ErrMalformedPayload, "", "invalid base64: %v", err)
	}
	raw, err := compress.Inflate(z)
	if err != nil {
		return nil, err
	}
	a, err := ParseNPY(raw)
	if err != nil {
		return nil, validation.Errorf(validation.ErrMalformedPayload, "", "failed to decode ndarray: %v", err)
	}
	return a, nil
}
