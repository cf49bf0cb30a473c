// services/canio/platform/factories_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/mcp2515"

	"canlink-go/services/canio"
	"canlink-go/types"
)

// -----------------------------------------------------------------------------
// MCP2515 controller on SPI0 (Raspberry Pi Pico / Pico 2)
//
// The RP2 family has no on-chip CAN controller; the usual wiring is an
// MCP2515 on SPI0's default pins with a dedicated chip-select. Wiring.TxPin
// carries the chip-select number (there is no separate TX line to the
// controller on SPI boards).
// -----------------------------------------------------------------------------

type mcp2515Peripheral struct {
	dev     *mcp2515.Device
	cfg     canio.Config
	started bool
}

func (p *mcp2515Peripheral) Install(cfg canio.Config) error {
	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 10 * machine.MHz,
	}); err != nil {
		return err
	}
	p.cfg = cfg
	p.dev = mcp2515.New(spi, machine.Pin(cfg.Wiring.TxPin))
	p.dev.Configure()
	return nil
}

func (p *mcp2515Peripheral) Start() error {
	if p.dev == nil {
		return canio.ErrNotInstalled
	}
	if err := p.dev.Begin(speedFor(p.cfg.Timing.BitrateKBps), mcp2515.Clock8MHz); err != nil {
		return err
	}
	p.started = true
	return nil
}

func (p *mcp2515Peripheral) Stop() error {
	if p.dev == nil {
		return canio.ErrNotInstalled
	}
	p.started = false
	return p.dev.Reset()
}

func (p *mcp2515Peripheral) Uninstall() error {
	p.dev = nil
	p.started = false
	return nil
}

func (p *mcp2515Peripheral) Transmit(f types.Frame, timeout time.Duration) error {
	if p.dev == nil {
		return canio.ErrNotInstalled
	}
	if !mcp2515CanTx(f) {
		return ErrUnsupportedFrame
	}
	return p.dev.Tx(f.ID, f.DLC, f.Data[:f.DLC])
}

// Receive polls the controller's RX flag at a millisecond cadence until a
// frame arrives or timeout elapses; the driver has no blocking read.
func (p *mcp2515Peripheral) Receive(f *types.Frame, timeout time.Duration) error {
	if p.dev == nil {
		return canio.ErrNotInstalled
	}
	deadline := time.Now().Add(timeout)
	for {
		if p.dev.Received() {
			msg, err := p.dev.Rx()
			if err != nil {
				return err
			}
			f.ID = msg.ID
			f.Extended = msg.ID > types.MaxStdID
			f.RTR = false
			f.DLC = msg.Dlc
			n := copy(f.Data[:], msg.Data)
			if int(f.DLC) > n {
				f.DLC = uint8(n)
			}
			return nil
		}
		if !time.Now().Before(deadline) {
			return canio.ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Status reports run state only: the tinygo driver does not expose the
// MCP2515 error-flag register, so bus-off shows up as failed transmits
// followed by a restart rather than a targeted bus recovery.
func (p *mcp2515Peripheral) Status() (canio.Status, error) {
	if p.dev == nil {
		return canio.StatusStopped, canio.ErrNotInstalled
	}
	if p.started {
		return canio.StatusRunning, nil
	}
	return canio.StatusStopped, nil
}

func (p *mcp2515Peripheral) RecoverBus() error {
	if p.dev == nil {
		return canio.ErrNotInstalled
	}
	// Re-entering Begin runs the controller's reset + mode sequence.
	return p.dev.Begin(speedFor(p.cfg.Timing.BitrateKBps), mcp2515.Clock8MHz)
}

func speedFor(kbps int) byte {
	switch {
	case kbps <= 125:
		return mcp2515.CAN125kBps
	case kbps <= 250:
		return mcp2515.CAN250kBps
	case kbps <= 500:
		return mcp2515.CAN500kBps
	default:
		return mcp2515.CAN1000kBps
	}
}

// -----------------------------------------------------------------------------
// Factory
// -----------------------------------------------------------------------------

type rp2Factory struct {
	unit *mcp2515Peripheral
}

func (f *rp2Factory) ByController(id int) (canio.Peripheral, bool) {
	if id != 0 {
		return nil, false
	}
	if f.unit == nil {
		f.unit = &mcp2515Peripheral{}
	}
	return f.unit, true
}

// DefaultFactory exposes the single MCP2515 controller as id 0.
func DefaultFactory() canio.PeripheralFactory {
	return &rp2Factory{}
}

// -----------------------------------------------------------------------------
// UART serial port for the SLCAN bridge
// -----------------------------------------------------------------------------

type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2SerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, buf)
}

// SerialByID configures uart0 or uart1 for the SLCAN bridge.
func SerialByID(id string, baud uint32, tx, rx int) (*rp2SerialPort, bool) {
	var hw *uartx.UART
	switch id {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, false
	}
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	})
	return &rp2SerialPort{u: hw}, true
}
