// cmd/pico-slcan/main.go
//go:build rp2040 || rp2350

// pico-slcan turns the board into a plain SLCAN dongle: the MCP2515 on one
// side, an SLCAN byte stream on uart1 on the other. The bridge owns the
// adapter directly; there is no message bus in this image.
package main

import (
	"context"
	"time"

	"canlink-go/services/canio"
	"canlink-go/services/canio/platform"
	"canlink-go/services/slcan"
	"canlink-go/types"
)

const (
	serialBaud = 115200
	serialTX   = 8
	serialRX   = 9

	mcpCSPin = 17
)

func main() {
	time.Sleep(3 * time.Second)
	println("[slcan] boot ...")

	port, ok := platform.SerialByID("uart1", serialBaud, serialTX, serialRX)
	if !ok {
		println("Error: slcan uart unavailable")
		return
	}

	per, ok := platform.DefaultFactory().ByController(0)
	if !ok {
		println("Error: can controller unavailable")
		return
	}

	cfg, pipeCfg := canio.BuildConfig(types.CANConfig{
		Wiring: types.CANWiring{TxPin: mcpCSPin, RxPin: canio.PinUnused},
		Params: types.CANParams{TxQueueLen: 16, RxQueueLen: 16},
		Timing: types.CANTiming{BitrateKBps: 500},
		Timeouts: types.CANTimeouts{
			ReceiveMS:  20,
			TransmitMS: 50,
		},
		Pipeline: &types.CANPipeline{QueueLen: 32, ProducerYieldMS: 1},
	})

	a := canio.New(per, cfg)
	if !a.Init() {
		println("Error: slcan adapter init failed")
		return
	}

	println("[slcan] bridging uart1 <> can0 at 500 kbps")
	slcan.Run(context.Background(), a, port, slcan.Config{Pipeline: pipeCfg})
	select {}
}
