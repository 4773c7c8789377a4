// Package dispatch delivers request side effects off the request path.
package dispatch

import (
	"context"
	"time"

	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
)

const (
	defaultBuffer     = 256
	deliverTimeout    = 15 * time.Second
	shutdownDrainTime = 5 * time.Second
)

// Sink delivers one event. Errors are logged by the dispatcher and never retried.
type Sink interface {
	Deliver(ctx context.Context, ev AdoptionRequestEvent) error
}

// NoopSink discards events. Used when no automation endpoint is configured.
type NoopSink struct{}

func (NoopSink) Deliver(context.Context, AdoptionRequestEvent) error { return nil }

// Dispatcher queues events in memory and hands them to a Sink from a single
// background loop. Dispatch never blocks the caller.
type Dispatcher struct {
	events  chan AdoptionRequestEvent
	sink    Sink
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a Dispatcher with the given buffer size.
func New(sink Sink, buffer int, log *logger.Logger, m *metrics.Metrics) *Dispatcher {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	if sink == nil {
		sink = NoopSink{}
	}
	return &Dispatcher{
		events:  make(chan AdoptionRequestEvent, buffer),
		sink:    sink,
		log:     log,
		metrics: m,
	}
}

// Dispatch enqueues ev. When the buffer is full the event is dropped and logged.
func (d *Dispatcher) Dispatch(ev AdoptionRequestEvent) {
	select {
	case d.events <- ev:
		d.metrics.Dispatch("queued")
	default:
		d.metrics.Dispatch("dropped")
		d.log.Warn("dispatch buffer full, event dropped", "request_id", ev.RequestID)
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is left
// for a short grace period.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case ev := <-d.events:
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownDrainTime)
	defer cancel()
	for {
		select {
		case ev := <-d.events:
			d.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev AdoptionRequestEvent) {
	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, ev); err != nil {
		d.metrics.Dispatch("failed")
		d.log.Error("automation dispatch failed", "request_id", ev.RequestID, "error", err)
		return
	}
	d.metrics.Dispatch("delivered")
	d.log.Debug("automation dispatch delivered", "request_id", ev.RequestID)
}
