// Package timeouts defines timeout, delay and sizing constants for the
// window monitor.
package timeouts

import "time"

const (
	// Hook Thread

	// HookCallTimeout bounds how long a caller waits for the hook thread to
	// install or remove native hooks. Both are single user32 calls per hook
	// class, so the thread only misses this when it is wedged.
	HookCallTimeout = 5 * time.Second

	// HookThreadStartTimeout is the maximum time to wait for the hook thread
	// to create its message queue after it is started.
	HookThreadStartTimeout = 2 * time.Second

	// Event Delivery

	// DefaultQueueSize is the capacity of the delivery queue between the hook
	// thread and the consumer. Events beyond it are dropped, never blocked on.
	DefaultQueueSize = 256

	// DeliveryDrainTimeout is the maximum time Close waits for queued events
	// to reach the consumer before giving up.
	DeliveryDrainTimeout = 2 * time.Second

	// Diagnostics

	// HTTPShutdownTimeout is the grace period for the metrics endpoint when
	// the watch command exits.
	HTTPShutdownTimeout = 3 * time.Second

	// HTTPReadHeaderTimeout limits slow clients of the metrics endpoint.
	HTTPReadHeaderTimeout = 5 * time.Second
)
