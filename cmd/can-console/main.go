// cmd/can-console/main.go
//go:build !rp2040 && !rp2350

// can-console is a host-side REPL against the loopback CAN peripheral. It
// exercises the full adapter surface (send, receive pipeline, recovery)
// without hardware.
//
//	send <id-hex> [data-hex] [ext] [rtr]
//	inject <id-hex> [data-hex]        queue a frame as if it arrived on the bus
//	status                            read controller status
//	force <running|bus_off|stopped>   pin controller status for recovery tests
//	recover                           run the recovery check once
//	drops                             pipeline drop counter
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/shlex"

	"canlink-go/services/canio"
	"canlink-go/services/canio/platform"
	"canlink-go/types"
	"canlink-go/x/conv"
)

func main() {
	per := platform.NewHostPeripheral()
	cfg := canio.Config{
		Params: canio.Params{TxQueueLen: 16, RxQueueLen: 16, Mode: types.ModeNormal},
		Timing: canio.Timing{BitrateKBps: 500},
		Timeouts: canio.Timeouts{
			Receive:        50 * time.Millisecond,
			Transmit:       50 * time.Millisecond,
			BusOffRecovery: 100 * time.Millisecond,
			Restart:        50 * time.Millisecond,
		},
	}
	a := canio.New(per, cfg)
	if !a.Init() {
		fmt.Fprintln(os.Stderr, "adapter init failed")
		os.Exit(1)
	}
	defer a.Deinit()

	pipe := canio.NewPipeline(a, canio.PipelineConfig{QueueLen: 32}, func(f types.Frame) {
		printFrame(f)
	})
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	pipe.Start(ctx)

	fmt.Println("can-console ready (loopback on controller 0), 'quit' to exit")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return
		case "send":
			doSend(a, args[1:])
		case "inject":
			doInject(per, args[1:])
		case "status":
			st, err := per.Status()
			if err != nil {
				fmt.Println("status error:", err)
				continue
			}
			fmt.Println(st.String())
		case "force":
			doForce(per, args[1:])
		case "recover":
			a.CheckAndRecover()
			fmt.Println("recovery check done")
		case "drops":
			fmt.Println(pipe.Drops())
		default:
			fmt.Println("unknown command:", args[0])
		}
	}
}

func doSend(a *canio.Adapter, args []string) {
	f, ok := parseFrame(args)
	if !ok {
		fmt.Println("usage: send <id-hex> [data-hex] [ext] [rtr]")
		return
	}
	if !a.Send(f) {
		fmt.Println("send failed")
	}
}

func doInject(per *platform.HostPeripheral, args []string) {
	f, ok := parseFrame(args)
	if !ok {
		fmt.Println("usage: inject <id-hex> [data-hex]")
		return
	}
	if !per.Inject(f) {
		fmt.Println("inject dropped: controller stopped or queue full")
	}
}

func doForce(per *platform.HostPeripheral, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: force <running|bus_off|stopped|clear>")
		return
	}
	switch args[0] {
	case "running":
		per.ForceStatus(canio.StatusRunning)
	case "bus_off":
		per.ForceStatus(canio.StatusBusOff)
	case "stopped":
		per.ForceStatus(canio.StatusStopped)
	case "clear":
		per.ClearStatus()
	default:
		fmt.Println("unknown status:", args[0])
	}
}

func parseFrame(args []string) (types.Frame, bool) {
	var f types.Frame
	if len(args) == 0 {
		return f, false
	}
	id, ok := conv.ParseHexU32([]byte(args[0]))
	if !ok {
		return f, false
	}
	f.ID = id
	rest := args[1:]
	if len(rest) > 0 && !isFlag(rest[0]) {
		data := rest[0]
		rest = rest[1:]
		if len(data)%2 != 0 || len(data) > 2*types.MaxDLC {
			return f, false
		}
		for i := 0; i < len(data); i += 2 {
			hi := conv.HexVal(data[i])
			lo := conv.HexVal(data[i+1])
			if hi == 255 || lo == 255 {
				return f, false
			}
			f.Data[i/2] = hi<<4 | lo
		}
		f.DLC = uint8(len(data) / 2)
	}
	for _, flag := range rest {
		switch strings.ToLower(flag) {
		case "ext":
			f.Extended = true
		case "rtr":
			f.RTR = true
		default:
			return f, false
		}
	}
	return f, f.Validate() == nil
}

func isFlag(s string) bool {
	switch strings.ToLower(s) {
	case "ext", "rtr":
		return true
	}
	return false
}

func printFrame(f types.Frame) {
	digits := 3
	if f.Extended {
		digits = 8
	}
	line := append([]byte("rx  "), conv.AppendU32Hex(nil, f.ID, digits)...)
	line = append(line, ' ', '[', '0'+f.DLC, ']', ' ')
	line = conv.AppendBytesHex(line, f.Payload())
	fmt.Println(string(line))
}
