package sessiongate

import (
	"context"
	"sync"
	"sync/atomic"
)

// queuedEvent pairs an event with the emitting caller's context so sinks
// can read request-scoped values (locale, request ID). Cancellation is
// stripped at enqueue time; a caller giving up on its request must not
// abort the event's delivery.
type queuedEvent struct {
	ctx   context.Context
	event AuthEvent
}

// eventDispatcher pumps lifecycle events to the configured sink from a
// single goroutine, so a slow sink never stalls an auth operation.
//
// Unauthorized events are terminal for the session and carry the most
// diagnostic weight, so under drop-if-full backpressure they displace the
// oldest queued event instead of being discarded themselves.
type eventDispatcher struct {
	cfg       EventsConfig
	sink      EventSink
	ch        chan queuedEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newEventDispatcher(cfg EventsConfig, sink EventSink) *eventDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &eventDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan queuedEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *eventDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case q := <-d.ch:
			d.sink.Emit(q.ctx, q.event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain flushes whatever is still buffered at close time.
func (d *eventDispatcher) drain() {
	for {
		select {
		case q := <-d.ch:
			d.sink.Emit(q.ctx, q.event)
		default:
			return
		}
	}
}

// Emit hands the event to the pump goroutine without blocking the auth
// path. With DropIfFull set, a full buffer drops informational events and
// counts them; an unauthorized event instead evicts the oldest queued one
// (counted as the drop) and takes its slot. Without DropIfFull the call
// blocks until there is room, ctx is done, or the dispatcher closes.
func (d *eventDispatcher) Emit(ctx context.Context, event AuthEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	q := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- q:
			return
		case <-d.done:
			return
		default:
		}
		if event.Type != EventUnauthorized {
			d.dropped.Add(1)
			return
		}
		select {
		case <-d.ch:
			d.dropped.Add(1)
		default:
		}
		select {
		case d.ch <- q:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- q:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops intake, waits for the pump to flush the buffer, and returns.
// Safe to call more than once and on a nil dispatcher.
func (d *eventDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded under backpressure.
func (d *eventDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
