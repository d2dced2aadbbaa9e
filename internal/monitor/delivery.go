package monitor

import (
	"bytes"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Norgate-AV/winmon/internal/logger"
)

type delivery struct {
	reg   *Registration
	event EventType
	rect  Rect
}

// dispatcher moves events from the hook thread to a single consumer
// goroutine. One FIFO consumer keeps events of a window in order.
type dispatcher struct {
	log     logger.LoggerInterface
	metrics *Metrics

	mu      sync.RWMutex
	stopped bool
	queue   chan delivery
	done    chan struct{}

	consumer atomic.Uint64 // goroutine id of run
}

func newDispatcher(size int, log logger.LoggerInterface, metrics *Metrics) *dispatcher {
	d := &dispatcher{
		log:     log,
		metrics: metrics,
		queue:   make(chan delivery, size),
		done:    make(chan struct{}),
	}

	go d.run()
	return d
}

// enqueue hands an event to the consumer without blocking.
// It reports false when the event was dropped.
func (d *dispatcher) enqueue(reg *Registration, event EventType, rect Rect) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return false
	}

	select {
	case d.queue <- delivery{reg: reg, event: event, rect: rect}:
		return true
	default:
		d.metrics.eventsDropped.Inc()
		d.log.Warn("Delivery queue full, event dropped",
			slog.Uint64("hwnd", uint64(reg.ID)),
			slog.String("event", event.String()),
			slog.Int("capacity", cap(d.queue)),
		)
		return false
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	d.consumer.Store(goroutineID())

	for item := range d.queue {
		d.invoke(item)
	}
}

// onConsumer reports whether the caller is running inside a callback.
func (d *dispatcher) onConsumer() bool {
	return goroutineID() == d.consumer.Load()
}

// invoke runs the callback with inflight held. Registrations closed after
// the event was queued never see it.
func (d *dispatcher) invoke(item delivery) {
	item.reg.inflight.Lock()
	defer item.reg.inflight.Unlock()

	if item.reg.Closed() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.metrics.callbackPanics.Inc()
			d.log.Error("Consumer callback panicked",
				slog.Uint64("hwnd", uint64(item.reg.ID)),
				slog.String("session", item.reg.Session.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	if item.reg.callback == nil {
		return
	}

	item.reg.callback(item.reg.ID, item.event, item.rect)
	d.metrics.eventsDelivered.WithLabelValues(item.event.String()).Inc()
}

// waitIdle returns once no callback of reg is running. Called from inside
// a callback it returns immediately, so a callback may unregister its own
// window.
func (d *dispatcher) waitIdle(reg *Registration) {
	if d.onConsumer() {
		return
	}

	reg.inflight.Lock()
	defer reg.inflight.Unlock()
}

// goroutineID parses the id of the calling goroutine from its stack header,
// the way x/net/http2 tracks goroutine ownership.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))

	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}

	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// stop refuses new events and waits up to timeout for queued events to
// drain. It reports whether the consumer finished in time.
func (d *dispatcher) stop(timeout time.Duration) bool {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.done:
		return true
	case <-timer.C:
		return false
	}
}
