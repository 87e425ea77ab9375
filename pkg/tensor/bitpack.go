package tensor

// packBits packs eight booleans per byte, least significant bit first. The
// final byte is padded with zero bits.
func packBits(v []bool) []byte {
	out := make([]byte, (len(v)+7)/8)
	for i, b := range v {
		if b {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// unpackBits reverses packBits and keeps only the first n bits.
func unpackBits(raw []byte, n int) []bool {
	if max := 8 * len(raw); n > max {
		n = max
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = raw[i/8]&(1<<(i%8)) != 0
	}
	return out
}
