// services/canio/pipeline_test.go
package canio

import (
	"context"
	"testing"
	"time"

	"canlink-go/types"
)

func TestPipeline_OfferDropsNewestWhenFull(t *testing.T) {
	p := NewPipeline(nil, PipelineConfig{QueueLen: 4}, func(types.Frame) {})

	for i := 0; i < 4; i++ {
		if !p.offer(types.Frame{ID: uint32(i), DLC: 0}) {
			t.Fatalf("offer %d rejected on non-full queue", i)
		}
	}
	if p.offer(types.Frame{ID: 99, DLC: 0}) {
		t.Fatal("offer accepted on full queue")
	}
	if p.Drops() != 1 {
		t.Fatalf("Drops = %d, want 1", p.Drops())
	}

	// Queued frames survive in arrival order; the dropped one is absent.
	for i := 0; i < 4; i++ {
		f := <-p.q
		if f.ID != uint32(i) {
			t.Fatalf("frame %d has ID %#x, want %#x", i, f.ID, i)
		}
	}
	select {
	case f := <-p.q:
		t.Fatalf("unexpected extra frame %+v", f)
	default:
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	frames := []types.Frame{
		{ID: 0x100, DLC: 1, Data: [8]byte{0xAA}},
		{ID: 0x200, DLC: 2, Data: [8]byte{0xBB, 0xCC}},
		{ID: 0x300, DLC: 0},
	}
	per := &fakePeripheral{rxScript: append([]types.Frame(nil), frames...)}
	cfg := testConfig()
	cfg.Timeouts.Receive = time.Millisecond
	a := New(per, cfg)

	got := make(chan types.Frame, len(frames))
	p := NewPipeline(a, PipelineConfig{QueueLen: 8, ProducerYield: time.Millisecond},
		func(f types.Frame) { got <- f })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	for i, want := range frames {
		select {
		case f := <-got:
			if f.ID != want.ID || f.DLC != want.DLC || f.Data != want.Data {
				t.Fatalf("frame %d = %+v, want %+v", i, f, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
	if p.Drops() != 0 {
		t.Fatalf("Drops = %d, want 0", p.Drops())
	}
}

func TestPipeline_StopsOnCancel(t *testing.T) {
	per := &fakePeripheral{} // always times out
	cfg := testConfig()
	cfg.Timeouts.Receive = time.Millisecond
	a := New(per, cfg)

	p := NewPipeline(a, PipelineConfig{QueueLen: 2, ProducerYield: time.Millisecond},
		func(types.Frame) {})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	before := per.count("receive")
	time.Sleep(20 * time.Millisecond)
	if after := per.count("receive"); after != before {
		t.Fatalf("producer still polling after cancel: %d -> %d", before, after)
	}
}
