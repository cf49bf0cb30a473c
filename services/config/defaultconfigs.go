package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under ctxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "can": {
    "wiring": {"tx_pin": 17, "rx_pin": 16},
    "params": {
      "controller_id": 0,
      "mode": "normal",
      "tx_queue_len": 20,
      "rx_queue_len": 20
    },
    "timing": {"bitrate_kbps": 500},
    "filter": {"accept_all": true},
    "timeouts": {
      "receive_ms": 100,
      "transmit_ms": 100,
      "bus_off_recovery_ms": 1000,
      "restart_ms": 100
    },
    "pipeline": {"queue_len": 64, "producer_yield_ms": 1}
  },
  "monitor": {
    "interval_ms": 5000
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
