package qpy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// HeaderSize is the length of the QPY file header from format version 10 on.
const HeaderSize = 19

// Header is the fixed-layout QPY file header (v10+), big-endian:
// 6-byte preface, qpy version, qiskit major/minor/patch, program count and
// the symbolic encoding marker.
type Header struct {
	Preface          [6]byte
	QPYVersion       uint8
	MajorVersion     uint8
	MinorVersion     uint8
	PatchVersion     uint8
	NumPrograms      uint64
	SymbolicEncoding byte
}

// ReadHeader reads exactly HeaderSize bytes from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return Header{}, validation.Errorf(validation.ErrMalformedPayload, "",
			"read QPY header: %v", err)
	}
	return h, nil
}

// ParseHeader reads the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	return ReadHeader(bytes.NewReader(b))
}

// Bytes returns the wire form of h.
func (h Header) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	_ = binary.Write(&buf, binary.BigEndian, h)
	return buf.Bytes()
}

// QiskitVersion returns the version of the library that wrote the file.
func (h Header) QiskitVersion() string {
	return fmt.Sprintf("%d.%d.%d", h.MajorVersion, h.MinorVersion, h.PatchVersion)
}

// checkPrograms enforces exactly one encoded circuit.
func (h Header) checkPrograms(field string) error {
	if h.NumPrograms != 1 {
		return validation.Errorf(validation.ErrUnexpectedProgramCount, field,
			"expected exactly one encoded quantum circuit, received %d", h.NumPrograms)
	}
	return nil
}
