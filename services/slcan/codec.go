// services/slcan/codec.go

// Package slcan bridges the CAN adapter to a serial port using the SLCAN
// ASCII framing ("t123 8 ..." lines) understood by slcand and common PC
// tooling. Only data/RTR frames are carried; channel-control commands
// (open/close/bitrate) are acknowledged but ignored, since the adapter is
// configured over the message bus instead.
package slcan

import (
	"errors"

	"canlink-go/types"
	"canlink-go/x/conv"
)

// Frame type prefixes.
const (
	prefStd    = 't'
	prefExt    = 'T'
	prefStdRTR = 'r'
	prefExtRTR = 'R'
	terminator = '\r'
)

var ErrBadFrame = errors.New("slcan: malformed frame")

// EncodeFrame appends the SLCAN rendition of f to dst, including the
// trailing carriage return.
func EncodeFrame(dst []byte, f types.Frame) []byte {
	switch {
	case f.RTR && f.Extended:
		dst = append(dst, prefExtRTR)
	case f.RTR:
		dst = append(dst, prefStdRTR)
	case f.Extended:
		dst = append(dst, prefExt)
	default:
		dst = append(dst, prefStd)
	}
	if f.Extended {
		dst = conv.AppendU32Hex(dst, f.ID&types.MaxExtID, 8)
	} else {
		dst = conv.AppendU32Hex(dst, f.ID&types.MaxStdID, 3)
	}
	dst = append(dst, '0'+(f.DLC&0x0F))
	if !f.RTR {
		dst = conv.AppendBytesHex(dst, f.Payload())
	}
	return append(dst, terminator)
}

// DecodeFrame parses one SLCAN line (with or without the trailing '\r').
func DecodeFrame(line []byte) (types.Frame, error) {
	var f types.Frame
	if n := len(line); n > 0 && line[n-1] == terminator {
		line = line[:n-1]
	}
	if len(line) < 2 {
		return f, ErrBadFrame
	}

	idDigits := 3
	switch line[0] {
	case prefExtRTR:
		f.RTR = true
		fallthrough
	case prefExt:
		f.Extended = true
		idDigits = 8
	case prefStdRTR:
		f.RTR = true
	case prefStd:
	default:
		return f, ErrBadFrame
	}

	if len(line) < 1+idDigits+1 {
		return f, ErrBadFrame
	}
	id, ok := conv.ParseHexU32(line[1 : 1+idDigits])
	if !ok {
		return f, ErrBadFrame
	}
	f.ID = id

	dlc := line[1+idDigits] - '0'
	if dlc > types.MaxDLC {
		return f, ErrBadFrame
	}
	f.DLC = dlc

	body := line[1+idDigits+1:]
	if f.RTR {
		if len(body) != 0 {
			return f, ErrBadFrame
		}
	} else {
		if len(body) != int(dlc)*2 {
			return f, ErrBadFrame
		}
		for i := 0; i < int(dlc); i++ {
			hi := conv.HexVal(body[2*i])
			lo := conv.HexVal(body[2*i+1])
			if hi == 255 || lo == 255 {
				return f, ErrBadFrame
			}
			f.Data[i] = hi<<4 | lo
		}
	}
	if err := f.Validate(); err != nil {
		return f, ErrBadFrame
	}
	return f, nil
}
