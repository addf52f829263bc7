package isa

// Shared big-endian packing helpers (spec.md §4.3). Address fields are
// 2-byte big-endian; data values round-trip through an 8-byte big-endian
// buffer regardless of their declared width.

func u16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func putU16BE(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

// U64PadBE right-aligns up to 8 bytes of big-endian data into a zero-padded
// 8-byte array, matching the reference's u64_pad_be: the least-significant
// width bytes of a value live at the end of an 8-byte big-endian buffer.
func U64PadBE(data []byte) [8]byte {
	var padded [8]byte
	copy(padded[8-len(data):], data)
	return padded
}

// PutU64BE writes the 8-byte big-endian encoding of v into b (len(b) == 8).
func PutU64BE(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}

// U64FromBE interprets an 8-byte big-endian buffer as an unsigned 64-bit
// value.
func U64FromBE(b [8]byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

// ZeroExtend reads a width-byte big-endian value (width ∈ {1,2,4,8}) out of
// data and zero-extends it to 64 bits, per spec.md §4.2 "Operand loading".
func ZeroExtend(data []byte, width Width) uint64 {
	return U64FromBE(U64PadBE(data[:width]))
}

// LeastSignificant returns the least-significant width bytes of v's 8-byte
// big-endian encoding, per spec.md §4.2 "Operand storing".
func LeastSignificant(v uint64, width Width) []byte {
	var buf [8]byte
	PutU64BE(buf[:], v)
	return buf[8-width:]
}
