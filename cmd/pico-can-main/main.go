// cmd/pico-can-main/main.go
//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"canlink-go/bus"
	"canlink-go/services/canio"
	"canlink-go/services/canio/platform"
	"canlink-go/services/config"
	"canlink-go/services/monitor"
	"canlink-go/types"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(3 * time.Second)
	ctx := config.WithDevice(context.Background(), "pico")

	println("[main] bootstrapping bus ...")
	b := bus.NewBus(8)

	println("[main] starting can service ...")
	go canio.Run(ctx, b.NewConnection("can"), platform.DefaultFactory())

	println("[main] starting monitor ...")
	go monitor.Run(ctx, b.NewConnection("monitor"))

	// Retained config brings the can service up and sets the monitor cadence.
	println("[main] publishing embedded config ...")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	// Diagnostics: echo adapter state transitions to the USB console.
	diag := b.NewConnection("diag")
	stateSub := diag.Subscribe(bus.T("can", "state"))
	go func() {
		for m := range stateSub.Channel() {
			println("[state]", stateString(m.Payload))
		}
	}()

	select {}
}

func stateString(payload any) string {
	switch v := payload.(type) {
	case types.AdapterState:
		return v.Level + " " + v.Status
	case map[string]any:
		lvl, _ := v["level"].(string)
		st, _ := v["status"].(string)
		return lvl + " " + st
	}
	return "?"
}
