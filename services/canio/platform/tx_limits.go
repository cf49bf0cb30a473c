// services/canio/platform/tx_limits.go
package platform

import (
	"errors"

	"canlink-go/types"
)

// ErrUnsupportedFrame is returned for frame features the attached controller
// driver cannot transmit.
var ErrUnsupportedFrame = errors.New("platform: frame type unsupported by controller")

// mcp2515CanTx reports whether the mcp2515 driver's transmit path can carry
// f. The driver writes the ID into the standard-frame registers only, so a
// 29-bit ID would silently truncate and RTR framing is not exposed at all.
func mcp2515CanTx(f types.Frame) bool {
	return !f.Extended && !f.RTR
}
