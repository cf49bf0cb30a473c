// services/canio/config.go
package canio

import (
	"time"

	"canlink-go/types"
	"canlink-go/x/mathx"
	"canlink-go/x/timex"
)

// Defaults applied to absent or out-of-range config fields. Timeout defaults
// match a 100 ms polling cadence with a 1 s bus-off recovery window.
const (
	defaultQueueLen  = 20
	defaultBitrate   = 1000 // kbps
	defaultTimeoutMS = 100
	defaultBusOffMS  = 1000
	defaultRestartMS = 100

	maxQueueLen  = 256
	maxTimeoutMS = 60_000
	maxBitrate   = 1000 // classical CAN ceiling, kbps
)

// BuildConfig converts the JSON document into the adapter's typed Config and
// the pipeline sizing, clamping queue lengths and timeouts to sane bounds.
// Durations leave this function as time.Duration; platform peripherals
// convert to their native tick unit only at the driver boundary.
func BuildConfig(c types.CANConfig) (Config, PipelineConfig) {
	cfg := Config{
		Wiring: Wiring{
			TxPin:       c.Wiring.TxPin,
			RxPin:       c.Wiring.RxPin,
			ClockOutPin: optPin(c.Wiring.ClockOutPin),
			BusOffPin:   optPin(c.Wiring.BusOffPin),
		},
		Params: Params{
			ControllerID: c.Params.ControllerID,
			Mode:         modeOrDefault(c.Params.Mode),
			TxQueueLen:   queueLen(c.Params.TxQueueLen),
			RxQueueLen:   queueLen(c.Params.RxQueueLen),
			Alerts:       c.Params.Alerts,
			ClockDivider: c.Params.ClockDivider,
			IntrPriority: c.Params.IntrPriority,
		},
		Timing: Timing{
			BitrateKBps:    bitrate(c.Timing.BitrateKBps),
			SamplePointPct: mathx.Clamp(c.Timing.SamplePointPct, 0, 99),
		},
		Filter: Filter{
			AcceptAll: c.Filter.AcceptAll,
			ID:        c.Filter.ID,
			Mask:      c.Filter.Mask,
			Extended:  c.Filter.Extended,
		},
		Timeouts: Timeouts{
			Receive:        timeoutMS(c.Timeouts.ReceiveMS, defaultTimeoutMS),
			Transmit:       timeoutMS(c.Timeouts.TransmitMS, defaultTimeoutMS),
			BusOffRecovery: timeoutMS(c.Timeouts.BusOffRecoveryMS, defaultBusOffMS),
			Restart:        timeoutMS(c.Timeouts.RestartMS, defaultRestartMS),
		},
	}

	pipe := PipelineConfig{}
	if c.Pipeline != nil {
		pipe.QueueLen = mathx.Clamp(c.Pipeline.QueueLen, 0, 1024)
		pipe.ProducerYield = timex.MS(mathx.Clamp(c.Pipeline.ProducerYieldMS, 0, 1000))
	}
	return cfg, pipe
}

func optPin(p *int) int {
	if p == nil {
		return PinUnused
	}
	return *p
}

func modeOrDefault(m types.Mode) types.Mode {
	switch m {
	case types.ModeNormal, types.ModeNoAck, types.ModeListenOnly:
		return m
	}
	return types.ModeNormal
}

func queueLen(n int) int {
	if n <= 0 {
		return defaultQueueLen
	}
	return mathx.Clamp(n, 1, maxQueueLen)
}

func bitrate(kbps int) int {
	if !mathx.Between(kbps, 1, maxBitrate) {
		return defaultBitrate
	}
	return kbps
}

func timeoutMS(ms, def int) time.Duration {
	if ms <= 0 {
		ms = def
	}
	return timex.MS(mathx.Clamp(ms, 0, maxTimeoutMS))
}
