package conv

const hexd = "0123456789ABCDEF"

// U32Hex writes an n-value as `digits` uppercase hex characters, zero-padded,
// without 0x. buf must hold at least `digits` bytes.
func U32Hex(buf []byte, n uint32, digits int) []byte {
	if len(buf) < digits {
		return buf[:0]
	}
	i := digits
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[:digits]
}

// AppendU32Hex appends `digits` uppercase hex characters for n.
func AppendU32Hex(dst []byte, n uint32, digits int) []byte {
	var buf [8]byte
	return append(dst, U32Hex(buf[:], n, digits)...)
}

// AppendByteHex appends two uppercase hex characters for b.
func AppendByteHex(dst []byte, b byte) []byte {
	return append(dst, hexd[b>>4], hexd[b&0xF])
}

// AppendBytesHex appends two hex characters per input byte.
func AppendBytesHex(dst, src []byte) []byte {
	for _, b := range src {
		dst = AppendByteHex(dst, b)
	}
	return dst
}

// HexVal returns the value of one hex digit, or 255 if c is not a hex digit.
func HexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return 255
}

// ParseHexU32 parses up to 8 hex digits. ok is false on empty or invalid input.
func ParseHexU32(s []byte) (v uint32, ok bool) {
	if len(s) == 0 || len(s) > 8 {
		return 0, false
	}
	for _, c := range s {
		d := HexVal(c)
		if d == 255 {
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	return v, true
}
