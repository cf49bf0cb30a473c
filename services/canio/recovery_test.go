// services/canio/recovery_test.go
package canio

import (
	"errors"
	"testing"
)

func TestActionFor(t *testing.T) {
	cases := []struct {
		st   Status
		want recoverAction
	}{
		{StatusRunning, actionNone},
		{StatusBusOff, actionBusRecover},
		{StatusStopped, actionRestart},
	}
	for _, tc := range cases {
		if got := actionFor(tc.st); got != tc.want {
			t.Errorf("actionFor(%v) = %d, want %d", tc.st, got, tc.want)
		}
	}
}

func TestCheckAndRecover_BusOff(t *testing.T) {
	per := &fakePeripheral{status: StatusBusOff}
	a := New(per, testConfig())

	a.CheckAndRecover()

	if per.count("recover_bus") != 1 {
		t.Fatalf("recover_bus calls = %d, want 1", per.count("recover_bus"))
	}
	if per.count("stop") != 0 || per.count("start") != 0 {
		t.Fatalf("bus-off path must not restart: %v", per.calls)
	}
}

func TestCheckAndRecover_StoppedRestarts(t *testing.T) {
	per := &fakePeripheral{status: StatusStopped}
	a := New(per, testConfig())

	a.CheckAndRecover()

	// Exactly status, stop, start, in that order.
	want := []string{"status", "stop", "start"}
	if len(per.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", per.calls, want)
	}
	for i := range want {
		if per.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", per.calls, want)
		}
	}
}

func TestCheckAndRecover_RunningIsNoOp(t *testing.T) {
	per := &fakePeripheral{status: StatusRunning}
	a := New(per, testConfig())

	a.CheckAndRecover()

	if len(per.calls) != 1 || per.calls[0] != "status" {
		t.Fatalf("running controller must only be inspected, got %v", per.calls)
	}
}

func TestCheckAndRecover_StatusErrorIsSilentNoOp(t *testing.T) {
	per := &fakePeripheral{statusErr: errors.New("spi fault")}
	a := New(per, testConfig())

	a.CheckAndRecover()

	if len(per.calls) != 1 {
		t.Fatalf("unreadable status must abort recovery, got %v", per.calls)
	}
}

func TestCheckAndRecover_RestartContinuesPastStopError(t *testing.T) {
	per := &fakePeripheral{status: StatusStopped, stopErr: errors.New("not started")}
	a := New(per, testConfig())

	a.CheckAndRecover()

	if per.count("start") != 1 {
		t.Fatal("start skipped after failed stop")
	}
}
