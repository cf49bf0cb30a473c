// services/canio/adapter.go
package canio

import (
	"errors"

	"canlink-go/types"
)

// Adapter owns a single CAN peripheral handle plus a copy of its Config.
// One Adapter per controller; callers must not share a peripheral between
// adapters. Send/Receive are safe to call from separate goroutines only to
// the extent the underlying driver serialises them (no internal mutex here).
type Adapter struct {
	per Peripheral
	cfg Config
}

// New copies cfg and binds the adapter to its peripheral. No hardware is
// touched until Init. The caller's cfg may be reused or dropped afterwards.
func New(per Peripheral, cfg Config) *Adapter {
	return &Adapter{per: per, cfg: cfg}
}

// Config returns the stored configuration copy.
func (a *Adapter) Config() Config { return a.cfg }

// Init installs and starts the peripheral. On a start failure the peripheral
// is uninstalled again, so a failed Init never leaks a claimed controller and
// a subsequent Init may succeed.
func (a *Adapter) Init() bool {
	if err := a.cfg.Validate(); err != nil {
		println("Error: can config rejected:", err.Error())
		return false
	}
	if err := a.per.Install(a.cfg); err != nil {
		println("Error: can driver install failed:", err.Error())
		return false
	}
	if err := a.per.Start(); err != nil {
		println("Error: can start failed:", err.Error())
		if uerr := a.per.Uninstall(); uerr != nil {
			println("Warn: can uninstall after failed start:", uerr.Error())
		}
		return false
	}
	println("Info: can adapter started, controller", a.cfg.Params.ControllerID)
	return true
}

// Deinit stops and uninstalls the peripheral. Both sub-steps run even when
// the first fails, favouring resource reclamation over failure propagation.
func (a *Adapter) Deinit() bool {
	ok := true
	if err := a.per.Stop(); err != nil {
		println("Warn: can stop failed:", err.Error())
		ok = false
	}
	if err := a.per.Uninstall(); err != nil {
		println("Warn: can uninstall failed:", err.Error())
		ok = false
	}
	return ok
}

// Send queues one frame with the configured transmit timeout. Invalid frames
// are rejected before any peripheral interaction. On a peripheral error the
// recovery check runs synchronously before reporting failure; the frame is
// never retried here.
func (a *Adapter) Send(f types.Frame) bool {
	if err := f.Validate(); err != nil {
		println("Error: can tx rejected:", err.Error())
		return false
	}
	if err := a.per.Transmit(f, a.cfg.Timeouts.Transmit); err != nil {
		println("Error: can tx failed:", err.Error())
		a.CheckAndRecover()
		return false
	}
	return true
}

// Receive polls for one frame with the configured receive timeout.
// A timeout is an expected outcome during polling: it reports false without
// recovery and without an error log. A frame arriving with a DLC above 8 is
// a data-integrity anomaly, not a bus fault: it is dropped without recovery.
func (a *Adapter) Receive(f *types.Frame) bool {
	if f == nil {
		println("Error: can rx into nil frame")
		return false
	}
	err := a.per.Receive(f, a.cfg.Timeouts.Receive)
	if err == nil {
		if f.DLC > types.MaxDLC {
			println("Warn: can rx dropped, invalid DLC", int(f.DLC))
			return false
		}
		return true
	}
	if errors.Is(err, ErrTimeout) {
		return false
	}
	println("Error: can rx failed:", err.Error())
	a.CheckAndRecover()
	return false
}
