package types

import "errors"

// ------------------------
// CAN frame (classical 2.0A/2.0B)
// ------------------------

// Identifier limits.
const (
	MaxStdID = 0x7FF      // 11-bit
	MaxExtID = 0x1FFFFFFF // 29-bit
	MaxDLC   = 8
)

var (
	ErrFrameDLC = errors.New("invalid_dlc")
	ErrFrameID  = errors.New("invalid_identifier")
)

// Frame is one classical CAN frame. It is a value type: a copy placed in a
// queue is the single owner of its payload while in flight.
type Frame struct {
	ID       uint32  // 11-bit (std) or 29-bit (ext)
	Extended bool    // 29-bit identifier
	RTR      bool    // remote transmission request
	DLC      uint8   // 0..8
	Data     [8]byte // payload; bytes past DLC are undefined
}

// Validate rejects frames the controller would refuse: DLC above 8 or an
// identifier that does not fit the declared width.
func (f Frame) Validate() error {
	if f.DLC > MaxDLC {
		return ErrFrameDLC
	}
	if f.Extended {
		if f.ID > MaxExtID {
			return ErrFrameID
		}
	} else if f.ID > MaxStdID {
		return ErrFrameID
	}
	return nil
}

// Payload returns the valid data bytes (clamped to the array length so a
// corrupt DLC cannot panic the caller).
func (f *Frame) Payload() []byte {
	n := int(f.DLC)
	if n > len(f.Data) {
		n = len(f.Data)
	}
	return f.Data[:n]
}

// ------------------------
// Controller mode + state
// ------------------------

// Mode selects how the controller participates on the wire.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeNoAck      Mode = "no_ack"
	ModeListenOnly Mode = "listen_only"
)

// AdapterState is the retained state document published by the CAN service.
type AdapterState struct {
	Level  string `json:"level"`  // "idle", "ready", "error", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`  // publish Unix ms
}
