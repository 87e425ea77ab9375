package qpy

import (
	"github.com/Qiskit/ibm-quantum-schemas/pkg/compress"
)

// sniffCompressedHeader inflates only the first HeaderSize bytes of a zlib
// stream and parses them.
func sniffCompressedHeader(b []byte) (Header, error) {
	head, err := compress.InflatePrefix(b, HeaderSize)
	if err != nil {
		return Header{}, err
	}
	return ParseHeader(head)
}
