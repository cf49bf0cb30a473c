// services/canio/pipeline.go
package canio

import (
	"context"
	"sync/atomic"
	"time"

	"canlink-go/types"
)

// PipelineConfig sizes the producer/consumer receive path.
type PipelineConfig struct {
	// QueueLen bounds the frame queue between producer and consumer.
	QueueLen int
	// ProducerYield is slept after a receive miss to avoid a hot spin loop.
	ProducerYield time.Duration
}

// Pipeline decouples the interrupt-backed driver receive path from
// application-level consumption. One producer goroutine pulls frames out of
// the adapter; one consumer goroutine drains a bounded FIFO queue into the
// handler. The queue absorbs bursts; under sustained overload new frames are
// dropped at the enqueue step so the producer never stalls on a slow
// consumer (drop-newest policy, counted in Drops).
type Pipeline struct {
	adapter *Adapter
	handler func(types.Frame)

	q     chan types.Frame
	yield time.Duration
	drops uint32
}

// NewPipeline wires a pipeline to an initialised adapter. handler runs on the
// consumer goroutine and must not be nil.
func NewPipeline(a *Adapter, cfg PipelineConfig, handler func(types.Frame)) *Pipeline {
	if cfg.QueueLen <= 0 {
		cfg.QueueLen = 64
	}
	if cfg.ProducerYield <= 0 {
		cfg.ProducerYield = time.Millisecond
	}
	return &Pipeline{
		adapter: a,
		handler: handler,
		q:       make(chan types.Frame, cfg.QueueLen),
		yield:   cfg.ProducerYield,
	}
}

// Start launches the producer and consumer goroutines. Both exit when ctx is
// cancelled; an in-flight Receive still runs to its own timeout first.
func (p *Pipeline) Start(ctx context.Context) {
	go p.produce(ctx)
	go p.consume(ctx)
}

// Drops reports frames discarded because the queue was full.
func (p *Pipeline) Drops() uint32 { return atomic.LoadUint32(&p.drops) }

// offer enqueues without blocking; a full queue drops the new frame.
func (p *Pipeline) offer(f types.Frame) bool {
	select {
	case p.q <- f:
		return true
	default:
		atomic.AddUint32(&p.drops, 1)
		return false
	}
}

func (p *Pipeline) produce(ctx context.Context) {
	var f types.Frame
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if p.adapter.Receive(&f) {
			p.offer(f)
		} else {
			// No frame within the adapter timeout; yield briefly.
			time.Sleep(p.yield)
		}
	}
}

func (p *Pipeline) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-p.q:
			p.handler(f)
		}
	}
}
