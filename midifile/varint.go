package midifile

// MaxVarInt is the largest value a four byte variable-length quantity can hold.
const MaxVarInt = 0x0FFFFFFF

const maxVarIntBytes = 4

// ReadVarInt decodes a variable-length quantity from the start of b: seven bits per byte, most significant
// group first, high bit set on every byte but the last. It returns the value and the number of bytes consumed.
// Offsets in returned errors are relative to b.
func ReadVarInt(b []byte) (uint32, int, error) {
	var value uint32
	for i := 0; i < maxVarIntBytes; i++ {
		if i >= len(b) {
			return 0, i, formatErrorf(TruncatedChunk, i, "variable-length quantity runs past end of data")
		}
		c := b[i]
		value = value<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, maxVarIntBytes, formatErrorf(VarIntOverflow, 0, "continuation bit set on byte %d", maxVarIntBytes)
}

// AppendVarInt appends the variable-length encoding of v to dst. Values above MaxVarInt are an error.
func AppendVarInt(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVarInt {
		return dst, formatErrorf(VarIntOverflow, 0, "value %#x does not fit in %d bytes", v, maxVarIntBytes)
	}
	var buf [maxVarIntBytes]byte
	n := len(buf) - 1
	buf[n] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		n--
		buf[n] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[n:]...), nil
}
