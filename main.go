// Host smoke demo: full service stack on the loopback controller. Frames
// sent over the control topic come straight back on can/rx.
package main

import (
	"context"
	"time"

	"canlink-go/bus"
	"canlink-go/services/canio"
	"canlink-go/services/canio/platform"
	"canlink-go/x/timex"
)

const demoConfig = `{
	"params": {"tx_queue_len": 16, "rx_queue_len": 16},
	"timing": {"bitrate_kbps": 500},
	"timeouts": {"receive_ms": 20, "transmit_ms": 20},
	"pipeline": {"queue_len": 32, "producer_yield_ms": 1}
}`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	go canio.Run(ctx, b.NewConnection("can"), platform.DefaultFactory())

	ui := b.NewConnection("ui")
	rx := ui.Subscribe(bus.T("can", "rx"))
	go func() {
		for m := range rx.Channel() {
			p, _ := m.Payload.(map[string]any)
			println("rx:", str(p["id"]), str(p["data"]))
		}
	}()

	ui.Publish(ui.NewMessage(bus.T("config", "can"), demoConfig, true))
	time.Sleep(100 * time.Millisecond)

	seq := 0
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for range tick.C {
		seq++
		payload := map[string]any{"id": "123", "data": hexByte(seq)}
		reply, err := ui.RequestWait(ctx, ui.NewMessage(bus.T("can", "control", "send"), payload, false))
		if err != nil {
			println("Warn: send request failed:", err.Error())
			continue
		}
		if m, ok := reply.Payload.(map[string]any); ok {
			if okv, _ := m["ok"].(bool); !okv {
				println("Warn: send rejected at", timex.NowMs())
			}
		}
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func hexByte(n int) string {
	const digits = "0123456789ABCDEF"
	b := byte(n)
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
