// services/slcan/service.go
package slcan

import (
	"context"
	"time"

	"canlink-go/services/canio"
	"canlink-go/types"
)

// SerialPort is the stream transport the bridge runs over. The rp2 platform
// backs it with a tinygo-uartx UART; host tooling can wrap any byte pipe.
type SerialPort interface {
	Write(p []byte) (int, error)
	// RecvSomeContext reads at least one byte or returns when ctx expires.
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

// Config bounds the bridge's buffers and cadence.
type Config struct {
	// MaxLine bounds the assembled command line (clamped 32..256).
	MaxLine int
	// ReadSlice bounds each blocking port read to assist shutdown.
	ReadSlice time.Duration
	// Pipeline sizes the adapter-side receive path.
	Pipeline canio.PipelineConfig
}

// Run pumps frames both ways until ctx is cancelled: adapter receive path →
// SLCAN lines out the port, and SLCAN lines from the port → adapter send.
// Commands that are not frames (channel open/close, bitrate selection) get
// an empty ACK so PC-side tools stay happy.
func Run(ctx context.Context, a *canio.Adapter, port SerialPort, cfg Config) {
	max := cfg.MaxLine
	if max < 32 {
		max = 32
	}
	if max > 256 {
		max = 256
	}
	slice := cfg.ReadSlice
	if slice <= 0 {
		slice = 250 * time.Millisecond
	}

	// Outbound: received frames are encoded on the consumer goroutine.
	out := make([]byte, 0, 32)
	pipe := canio.NewPipeline(a, cfg.Pipeline, func(f types.Frame) {
		out = EncodeFrame(out[:0], f)
		if _, err := port.Write(out); err != nil {
			println("Warn: slcan write failed:", err.Error())
		}
	})
	pipe.Start(ctx)

	// Inbound: assemble '\r'-terminated lines and feed the adapter.
	go func() {
		buf := make([]byte, 64)
		line := make([]byte, 0, max)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			rctx, cancel := context.WithTimeout(ctx, slice)
			n, _ := port.RecvSomeContext(rctx, buf)
			cancel()
			for _, c := range buf[:n] {
				if c != terminator && c != '\n' {
					if len(line) < max {
						line = append(line, c)
					}
					continue
				}
				if len(line) > 0 {
					handleLine(a, port, line)
					line = line[:0]
				}
			}
		}
	}()
}

func handleLine(a *canio.Adapter, port SerialPort, line []byte) {
	switch line[0] {
	case prefStd, prefExt, prefStdRTR, prefExtRTR:
		f, err := DecodeFrame(line)
		if err != nil {
			writeNAK(port)
			return
		}
		if !a.Send(f) {
			writeNAK(port)
			return
		}
		writeACK(port)
	default:
		// Channel control ('O', 'C', 'S<n>', ...): configuration happens on
		// the message bus, so just acknowledge.
		writeACK(port)
	}
}

func writeACK(port SerialPort) { _, _ = port.Write([]byte{terminator}) }
func writeNAK(port SerialPort) { _, _ = port.Write([]byte{7}) } // BEL per slcand
