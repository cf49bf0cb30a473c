// services/canio/platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"sync"
	"time"

	"canlink-go/services/canio"
	"canlink-go/types"
)

var errAlreadyInstalled = errors.New("platform: controller already installed")

// HostPeripheral is an in-memory CAN controller for host-side demos and
// tests. Transmitted frames loop back into the receive queue (when Loopback
// is on), and controller status can be forced to exercise the recovery path.
type HostPeripheral struct {
	Loopback bool

	mu        sync.Mutex
	installed bool
	started   bool
	forced    *canio.Status
	rxq       chan types.Frame
}

func NewHostPeripheral() *HostPeripheral {
	return &HostPeripheral{Loopback: true}
}

func (h *HostPeripheral) Install(cfg canio.Config) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return errAlreadyInstalled
	}
	h.installed = true
	h.rxq = make(chan types.Frame, cfg.Params.RxQueueLen)
	return nil
}

func (h *HostPeripheral) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed {
		return canio.ErrNotInstalled
	}
	h.started = true
	return nil
}

func (h *HostPeripheral) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	return nil
}

func (h *HostPeripheral) Uninstall() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.installed = false
	h.started = false
	h.rxq = nil
	return nil
}

func (h *HostPeripheral) Transmit(f types.Frame, timeout time.Duration) error {
	h.mu.Lock()
	started, loop, q := h.started, h.Loopback, h.rxq
	h.mu.Unlock()
	if !started {
		return canio.ErrNotRunning
	}
	if loop && q != nil {
		select {
		case q <- f:
		default:
			// full hardware queue behaves like a wire that never drains
		}
	}
	return nil
}

func (h *HostPeripheral) Receive(f *types.Frame, timeout time.Duration) error {
	h.mu.Lock()
	q := h.rxq
	h.mu.Unlock()
	if q == nil {
		return canio.ErrNotInstalled
	}
	select {
	case got := <-q:
		*f = got
		return nil
	case <-time.After(timeout):
		return canio.ErrTimeout
	}
}

func (h *HostPeripheral) Status() (canio.Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.forced != nil {
		return *h.forced, nil
	}
	if h.started {
		return canio.StatusRunning, nil
	}
	return canio.StatusStopped, nil
}

func (h *HostPeripheral) RecoverBus() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forced = nil
	return nil
}

// ForceStatus pins Status() to st until RecoverBus or ClearStatus.
func (h *HostPeripheral) ForceStatus(st canio.Status) {
	h.mu.Lock()
	h.forced = &st
	h.mu.Unlock()
}

// ClearStatus removes a forced status.
func (h *HostPeripheral) ClearStatus() {
	h.mu.Lock()
	h.forced = nil
	h.mu.Unlock()
}

// Inject places a frame on the receive queue as if it arrived off the wire.
func (h *HostPeripheral) Inject(f types.Frame) bool {
	h.mu.Lock()
	q := h.rxq
	h.mu.Unlock()
	if q == nil {
		return false
	}
	select {
	case q <- f:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Factory
// -----------------------------------------------------------------------------

type hostFactory struct {
	mu    sync.Mutex
	units map[int]*HostPeripheral
}

func (f *hostFactory) ByController(id int) (canio.Peripheral, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 0 || id > 1 {
		return nil, false
	}
	p, ok := f.units[id]
	if !ok {
		p = NewHostPeripheral()
		f.units[id] = p
	}
	return p, true
}

// DefaultFactory exposes loopback host controllers 0 and 1.
func DefaultFactory() canio.PeripheralFactory {
	return &hostFactory{units: map[int]*HostPeripheral{}}
}
