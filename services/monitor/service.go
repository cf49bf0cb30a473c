// Package monitor periodically nudges the CAN service's recovery check so a
// bus-off or stalled controller is noticed even when nobody is transmitting.
package monitor

import (
	"context"
	"time"

	"canlink-go/bus"
	"canlink-go/errcode"
)

var (
	topicConfig  = bus.T("config", "monitor")
	topicRecover = bus.T("can", "control", "recover")
)

const defaultInterval = 5 * time.Second

// Run drives the periodic check until ctx is cancelled. The interval is
// reconfigurable at runtime via "config/monitor" ({"interval_ms": N}).
func Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: monitor service stopping")
			return
		case <-tick.C:
			check(ctx, conn)
		case msg := <-cfgSub.Channel():
			if iv, ok := intervalFrom(msg.Payload); ok {
				tick.Reset(iv)
				println("Info: monitor interval set to", int(iv/time.Millisecond), "ms")
			}
		}
	}
}

// check asks the CAN service to run its recovery pass. A healthy adapter
// treats this as a no-op; an unconfigured one answers not_ready, which is
// normal before the first config arrives.
func check(ctx context.Context, conn *bus.Connection) {
	rctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	reply, err := conn.RequestWait(rctx, conn.NewMessage(topicRecover, nil, false))
	if err != nil {
		println("Warn: monitor: no reply from can service")
		return
	}
	if m, ok := reply.Payload.(map[string]any); ok {
		if okv, _ := m["ok"].(bool); !okv {
			if code, _ := m["error"].(string); code != string(errcode.NotReady) {
				println("Warn: monitor: recovery check failed:", code)
			}
		}
	}
}

func intervalFrom(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	iv, ok := m["interval_ms"]
	if !ok {
		return 0, false
	}
	ms, ok := iv.(float64)
	if !ok || ms < 10 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
