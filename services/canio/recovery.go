// services/canio/recovery.go
package canio

import "time"

// The recovery monitor keeps no state between calls: every invocation reads
// controller status fresh and acts on that alone. Bus-off needs the
// controller's own recovery sequence; any other non-running state is a
// driver-level stall that a stop/start cycle clears without losing the
// installed bit timing and filter.

type recoverAction uint8

const (
	actionNone recoverAction = iota
	actionBusRecover
	actionRestart
)

// actionFor is the pure transition function (status) -> action.
func actionFor(st Status) recoverAction {
	switch st {
	case StatusBusOff:
		return actionBusRecover
	case StatusRunning:
		return actionNone
	}
	return actionRestart
}

// CheckAndRecover inspects controller status and nudges it back towards
// Running. It is invoked after any failed Send/Receive and may be called
// proactively at any time. It does not verify that recovery succeeded: the
// next failed operation simply lands here again. If the status read itself
// fails nothing corrective can be targeted and the monitor stays silent.
// Both wait steps block the calling goroutine for their full duration.
func (a *Adapter) CheckAndRecover() {
	st, err := a.per.Status()
	if err != nil {
		return
	}
	switch actionFor(st) {
	case actionBusRecover:
		println("Warn: can bus-off detected, initiating recovery")
		if rerr := a.per.RecoverBus(); rerr != nil {
			println("Warn: can bus recovery request failed:", rerr.Error())
		}
		time.Sleep(a.cfg.Timeouts.BusOffRecovery)
	case actionRestart:
		println("Warn: can controller not running, restarting")
		if serr := a.per.Stop(); serr != nil {
			println("Warn: can stop during restart failed:", serr.Error())
		}
		time.Sleep(a.cfg.Timeouts.Restart)
		if serr := a.per.Start(); serr != nil {
			println("Warn: can start during restart failed:", serr.Error())
		}
	}
}
