// services/canio/service_test.go
package canio

import (
	"context"
	"testing"
	"time"

	"canlink-go/bus"
	"canlink-go/types"
)

type testFactory struct{ per *fakePeripheral }

func (f *testFactory) ByController(id int) (Peripheral, bool) {
	if id != 0 {
		return nil, false
	}
	return f.per, true
}

const cfgJSON = `{
	"params": {"tx_queue_len": 8, "rx_queue_len": 8},
	"timing": {"bitrate_kbps": 500},
	"timeouts": {"receive_ms": 1, "transmit_ms": 1},
	"pipeline": {"queue_len": 8, "producer_yield_ms": 1}
}`

func startService(t *testing.T, per *fakePeripheral) (*bus.Bus, context.CancelFunc) {
	t.Helper()
	b := bus.NewBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	go Run(ctx, b.NewConnection("can"), &testFactory{per: per})
	return b, cancel
}

func waitState(t *testing.T, sub *bus.Subscription, level string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st, ok := m.Payload.(types.AdapterState)
			if !ok {
				t.Fatalf("state payload type %T", m.Payload)
			}
			if st.Level == level {
				return
			}
		case <-deadline:
			t.Fatalf("state %q never published", level)
		}
	}
}

func TestService_ConfigBringsAdapterUp(t *testing.T) {
	per := &fakePeripheral{}
	b, cancel := startService(t, per)
	defer cancel()

	client := b.NewConnection("test")
	stateSub := client.Subscribe(bus.T("can", "state"))
	defer client.Unsubscribe(stateSub)

	waitState(t, stateSub, "idle")

	client.Publish(client.NewMessage(bus.T("config", "can"), cfgJSON, true))
	waitState(t, stateSub, "ready")

	if per.count("install") != 1 || per.count("start") != 1 {
		t.Fatalf("peripheral bring-up calls: %v", per.calls)
	}
}

func TestService_ControlSendTransmits(t *testing.T) {
	per := &fakePeripheral{}
	b, cancel := startService(t, per)
	defer cancel()

	client := b.NewConnection("test")
	stateSub := client.Subscribe(bus.T("can", "state"))
	defer client.Unsubscribe(stateSub)
	client.Publish(client.NewMessage(bus.T("config", "can"), cfgJSON, true))
	waitState(t, stateSub, "ready")

	ctx, cancelReq := context.WithTimeout(context.Background(), time.Second)
	defer cancelReq()
	reply, err := client.RequestWait(ctx, client.NewMessage(
		bus.T("can", "control", "send"),
		`{"id": "123", "data": "deadbeef"}`, false))
	if err != nil {
		t.Fatalf("send request failed: %v", err)
	}
	m, _ := reply.Payload.(map[string]any)
	if ok, _ := m["ok"].(bool); !ok {
		t.Fatalf("send rejected: %v", reply.Payload)
	}
	if per.count("transmit") != 1 {
		t.Fatalf("transmit calls = %d, want 1", per.count("transmit"))
	}
}

func TestService_ControlBeforeConfigIsNotReady(t *testing.T) {
	per := &fakePeripheral{}
	b, cancel := startService(t, per)
	defer cancel()

	client := b.NewConnection("test")
	stateSub := client.Subscribe(bus.T("can", "state"))
	waitState(t, stateSub, "idle")
	client.Unsubscribe(stateSub)

	ctx, cancelReq := context.WithTimeout(context.Background(), time.Second)
	defer cancelReq()
	reply, err := client.RequestWait(ctx, client.NewMessage(
		bus.T("can", "control", "status"), nil, false))
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	m, _ := reply.Payload.(map[string]any)
	if ok, _ := m["ok"].(bool); ok {
		t.Fatal("status answered ok before any config")
	}
	if code, _ := m["error"].(string); code != "not_ready" {
		t.Fatalf("error = %q, want not_ready", code)
	}
}

func TestService_ReceivedFramesReachRxTopic(t *testing.T) {
	frame := types.Frame{ID: 0x1ABCDEF0, Extended: true, DLC: 2, Data: [8]byte{0xCA, 0xFE}}
	per := &fakePeripheral{rxScript: []types.Frame{frame}}
	b, cancel := startService(t, per)
	defer cancel()

	client := b.NewConnection("test")
	rxSub := client.Subscribe(bus.T("can", "rx"))
	defer client.Unsubscribe(rxSub)
	stateSub := client.Subscribe(bus.T("can", "state"))
	defer client.Unsubscribe(stateSub)

	client.Publish(client.NewMessage(bus.T("config", "can"), cfgJSON, true))
	waitState(t, stateSub, "ready")

	select {
	case m := <-rxSub.Channel():
		p, ok := m.Payload.(map[string]any)
		if !ok {
			t.Fatalf("rx payload type %T", m.Payload)
		}
		if id, _ := p["id"].(string); id != "1ABCDEF0" {
			t.Fatalf("rx id = %v, want 1ABCDEF0", p["id"])
		}
		if data, _ := p["data"].(string); data != "CAFE" {
			t.Fatalf("rx data = %v, want CAFE", p["data"])
		}
		if ext, _ := p["ext"].(bool); !ext {
			t.Fatal("rx ext flag lost")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame never reached can/rx")
	}
}
