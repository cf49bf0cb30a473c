// services/canio/types.go
package canio

import (
	"errors"
	"time"

	"canlink-go/errcode"
	"canlink-go/types"
)

// -----------------------------------------------------------------------------
// Peripheral boundary
// -----------------------------------------------------------------------------

// Status is an on-demand read of controller state. It is polled, never stored.
type Status uint8

const (
	StatusRunning Status = iota
	StatusBusOff
	StatusStopped // any state that is neither Running nor BusOff
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusBusOff:
		return "bus_off"
	}
	return "stopped"
}

// Sentinel errors carry an errcode so the control plane can surface them as
// stable reply codes; callers still match them by identity via errors.Is.
var (
	// ErrTimeout marks an expected no-data outcome on Transmit/Receive.
	// It is the only peripheral error that does not trigger recovery.
	ErrTimeout error = &errcode.E{C: errcode.Timeout, Msg: "no frame within deadline"}

	ErrNotInstalled error = &errcode.E{C: errcode.NotReady, Msg: "driver not installed"}
	ErrNotRunning   error = &errcode.E{C: errcode.NotRunning, Msg: "controller not running"}
)

// Peripheral is the contract consumed from the underlying CAN controller
// driver. Implementations live in internal/platform; tests inject fakes.
// The driver owns bit-level framing, arbitration and the electrical layer.
type Peripheral interface {
	// Install claims the controller with wiring, parameters, bit timing and
	// acceptance filter. Start enables it on the wire.
	Install(cfg Config) error
	Start() error
	Stop() error
	Uninstall() error

	// Transmit queues one frame, blocking at most timeout.
	// Receive fills *f with the next frame, blocking at most timeout.
	// Both return ErrTimeout when the bound elapses without progress.
	Transmit(f types.Frame, timeout time.Duration) error
	Receive(f *types.Frame, timeout time.Duration) error

	// Status reads current controller state.
	Status() (Status, error)
	// RecoverBus asks the controller to run its bus-off recovery sequence.
	RecoverBus() error
}

// PeripheralFactory injects platform peripherals by controller id.
type PeripheralFactory interface {
	ByController(id int) (Peripheral, bool)
}

// -----------------------------------------------------------------------------
// Adapter configuration (typed durations; converted from the JSON document
// once, at build time, see config.go)
// -----------------------------------------------------------------------------

type Wiring struct {
	TxPin       int
	RxPin       int
	ClockOutPin int // PinUnused if not wired
	BusOffPin   int // PinUnused if not wired
}

// PinUnused marks an optional pin that is not wired.
const PinUnused = -1

type Params struct {
	ControllerID int
	Mode         types.Mode
	TxQueueLen   int
	RxQueueLen   int
	Alerts       uint32
	ClockDivider int
	IntrPriority int
}

type Timing struct {
	BitrateKBps    int
	SamplePointPct int
}

type Filter struct {
	AcceptAll bool
	ID        uint32
	Mask      uint32
	Extended  bool
}

type Timeouts struct {
	Receive        time.Duration
	Transmit       time.Duration
	BusOffRecovery time.Duration
	Restart        time.Duration
}

// Config is copied into the Adapter at construction and read-only after Init.
type Config struct {
	Wiring   Wiring
	Params   Params
	Timing   Timing
	Filter   Filter
	Timeouts Timeouts
}

var (
	errQueueLen = errors.New("canio: queue length must be positive")
	errTimeout  = errors.New("canio: timeouts must be non-negative")
	errBitrate  = errors.New("canio: bitrate must be positive")
)

// Validate enforces the config invariants before any hardware is touched.
func (c *Config) Validate() error {
	if c.Params.TxQueueLen <= 0 || c.Params.RxQueueLen <= 0 {
		return errQueueLen
	}
	if c.Timeouts.Receive < 0 || c.Timeouts.Transmit < 0 ||
		c.Timeouts.BusOffRecovery < 0 || c.Timeouts.Restart < 0 {
		return errTimeout
	}
	if c.Timing.BitrateKBps <= 0 {
		return errBitrate
	}
	return nil
}
