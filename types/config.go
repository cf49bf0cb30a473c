package types

// CAN adapter configuration supplied on topic "config/can".
// All durations are millisecond integers so configs stay portable across
// schedulers; the canio service converts them to time.Duration once.

type CANConfig struct {
	Wiring   CANWiring    `json:"wiring"`
	Params   CANParams    `json:"params"`
	Timing   CANTiming    `json:"timing"`
	Filter   CANFilter    `json:"filter"`
	Timeouts CANTimeouts  `json:"timeouts"`
	Pipeline *CANPipeline `json:"pipeline,omitempty"`
}

// CANWiring carries the controller pin assignment. Clock-out and bus-off
// indicator pins are optional; -1 (or omitted pointer) means unused.
type CANWiring struct {
	TxPin       int  `json:"tx_pin"`
	RxPin       int  `json:"rx_pin"`
	ClockOutPin *int `json:"clkout_pin,omitempty"`
	BusOffPin   *int `json:"bus_off_pin,omitempty"`
}

type CANParams struct {
	ControllerID int    `json:"controller_id"`
	Mode         Mode   `json:"mode"` // "normal" | "no_ack" | "listen_only"
	TxQueueLen   int    `json:"tx_queue_len"`
	RxQueueLen   int    `json:"rx_queue_len"`
	Alerts       uint32 `json:"alerts,omitempty"`       // enabled alert bitmask
	ClockDivider int    `json:"clock_divider,omitempty"`
	IntrPriority int    `json:"intr_priority,omitempty"`
}

// CANTiming selects the bit rate and sample point. The peripheral driver owns
// the translation to segment registers.
type CANTiming struct {
	BitrateKBps    int `json:"bitrate_kbps"`               // e.g. 125, 250, 500, 1000
	SamplePointPct int `json:"sample_point_pct,omitempty"` // 0 = driver default
}

// CANFilter is a single hardware acceptance rule. AcceptAll short-circuits
// ID/Mask.
type CANFilter struct {
	AcceptAll bool   `json:"accept_all"`
	ID        uint32 `json:"id,omitempty"`
	Mask      uint32 `json:"mask,omitempty"`
	Extended  bool   `json:"extended,omitempty"`
}

type CANTimeouts struct {
	ReceiveMS        int `json:"receive_ms"`
	TransmitMS       int `json:"transmit_ms"`
	BusOffRecoveryMS int `json:"bus_off_recovery_ms"`
	RestartMS        int `json:"restart_ms"`
}

// CANPipeline configures the optional producer/consumer receive path.
type CANPipeline struct {
	QueueLen        int `json:"queue_len"`
	ProducerYieldMS int `json:"producer_yield_ms,omitempty"`
}
