package monitor

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/timeouts"
)

// Options configures a Manager. Zero values select defaults.
type Options struct {
	QueueSize    int
	DrainTimeout time.Duration
	Metrics      *Metrics
}

// Status describes one registration for diagnostics.
type Status struct {
	Window    WindowID  `json:"window"`
	PID       uint32    `json:"pid"`
	TID       uint32    `json:"tid"`
	Session   string    `json:"session"`
	Hooks     int       `json:"hooks"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager is the public contract of the hook manager. It owns every
// registration and the native hooks behind it.
type Manager struct {
	log        logger.LoggerInterface
	platform   Platform
	classifier *Classifier
	registry   *Registry
	dispatcher *dispatcher
	metrics    *Metrics
	opts       Options

	closed bool // guarded by registry.mu
}

// NewManager composes a manager on top of platform.
func NewManager(platform Platform, log logger.LoggerInterface, opts Options) *Manager {
	if opts.QueueSize <= 0 {
		opts.QueueSize = timeouts.DefaultQueueSize
	}

	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = timeouts.DeliveryDrainTimeout
	}

	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	return &Manager{
		log:        log,
		platform:   platform,
		classifier: NewClassifier(platform, log),
		registry:   NewRegistry(),
		dispatcher: newDispatcher(opts.QueueSize, log, opts.Metrics),
		metrics:    opts.Metrics,
		opts:       opts,
	}
}

// CheckPrivilege reports whether the process may observe other processes'
// windows.
func (m *Manager) CheckPrivilege() bool {
	return m.platform.CheckPrivilege()
}

// Register starts monitoring id and delivers its events to cb.
// On success one synthesized Moved event with the current rectangle is
// queued before Register returns.
func (m *Manager) Register(id WindowID, cb Callback) error {
	err := m.register(id, cb)
	m.metrics.registerTotal.WithLabelValues(strconv.Itoa(int(CodeOf(err)))).Inc()
	return err
}

func (m *Manager) register(id WindowID, cb Callback) error {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()

	if m.closed {
		return fmt.Errorf("manager closed: %w", CreateObserverFailed)
	}

	if !m.platform.CheckPrivilege() {
		m.log.Warn("Missing privilege to observe windows", slog.Uint64("hwnd", uint64(id)))
		return NoRights
	}

	if _, exists := m.registry.entries[id]; exists {
		m.log.Debug("Window already registered", slog.Uint64("hwnd", uint64(id)))
		return AlreadyExist
	}

	owner, ok := m.platform.Owner(id)
	if !ok || owner.PID == 0 || owner.TID == 0 {
		m.log.Debug("Could not resolve window owner", slog.Uint64("hwnd", uint64(id)))
		return ApplicationNotFound
	}

	reg := &Registration{
		ID:        id,
		Owner:     owner,
		Session:   uuid.New(),
		CreatedAt: time.Now(),
		callback:  cb,
	}

	hooks, err := m.platform.Install(id, owner, m.sinkFor(reg))
	if err != nil {
		m.log.Error("Failed to install window hooks",
			slog.Uint64("hwnd", uint64(id)),
			slog.Uint64("pid", uint64(owner.PID)),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", CreateObserverFailed, err)
	}

	reg.hooks = hooks
	m.registry.insert(reg)
	m.metrics.registrations.Inc()
	m.metrics.hooksInstalled.Add(float64(hooks.Installed()))

	if n, wanted := hooks.Installed(), hooks.Wanted(); n < wanted {
		m.metrics.partialInstalls.Inc()
		m.log.Warn("Only some window hooks installed",
			slog.Uint64("hwnd", uint64(id)),
			slog.Int("installed", n),
			slog.Int("wanted", wanted),
		)
	}

	m.log.Debug("Window registered",
		slog.Uint64("hwnd", uint64(id)),
		slog.Uint64("pid", uint64(owner.PID)),
		slog.Uint64("tid", uint64(owner.TID)),
		slog.String("session", reg.Session.String()),
	)

	// Hooks may fire before this point; their events queue behind the snapshot.
	reg.goLive(delivery{reg: reg, event: Moved, rect: m.QueryRect(id)}, m.deliver)
	return nil
}

func (m *Manager) deliver(d delivery) {
	m.dispatcher.enqueue(d.reg, d.event, d.rect)
}

// sinkFor binds raw events of one registration to classification and
// delivery. It runs on the native hook thread.
func (m *Manager) sinkFor(reg *Registration) Sink {
	return func(raw RawEvent) {
		if reg.Closed() {
			return
		}

		m.log.Trace("Raw window event",
			slog.Uint64("hwnd", uint64(reg.ID)),
			slog.String("raw", raw.Kind.String()),
			slog.Uint64("code", uint64(raw.Code)),
		)

		event := m.classifier.Classify(reg.ID, raw)
		if event == Unknown {
			m.metrics.eventsIgnored.WithLabelValues(raw.Kind.String()).Inc()
			return
		}

		rect := m.QueryRect(reg.ID)
		if reg.hold(event, rect) {
			return
		}

		m.dispatcher.enqueue(reg, event, rect)
	}
}

// Unregister stops monitoring id. It is a no-op for unknown windows.
// No callback for id starts after Unregister returns.
func (m *Manager) Unregister(id WindowID) {
	m.registry.mu.Lock()
	reg, ok := m.registry.remove(id)
	if ok {
		m.detach(reg)
	}
	m.registry.mu.Unlock()

	if !ok {
		return
	}

	m.release(reg)
	m.log.Debug("Window unregistered",
		slog.Uint64("hwnd", uint64(id)),
		slog.String("session", reg.Session.String()),
	)
}

// detach marks a registration removed from the table as closed. Callers
// hold registry.mu.
func (m *Manager) detach(reg *Registration) {
	reg.closed.Store(true)
	m.metrics.registrations.Dec()
}

// release uninstalls the hooks of a detached registration and waits out a
// callback already running for it. It runs without registry.mu so such a
// callback may still call into the manager.
func (m *Manager) release(reg *Registration) {
	defer m.dispatcher.waitIdle(reg)

	if reg.hooks == nil {
		return
	}

	m.metrics.hooksInstalled.Sub(float64(reg.hooks.Installed()))
	if err := reg.hooks.Close(); err != nil {
		m.log.Warn("Failed to remove window hooks",
			slog.Uint64("hwnd", uint64(reg.ID)),
			slog.Any("error", err),
		)
	}
}

// QueryRect returns the current normalized rectangle of id, or the zero
// rectangle when the window cannot be queried.
func (m *Manager) QueryRect(id WindowID) Rect {
	raw, ok := m.platform.RawRect(id)
	if !ok {
		return Rect{}
	}

	return Normalize(raw, m.platform.DPI(id))
}

// IsRegistered reports whether id currently has a registration.
func (m *Manager) IsRegistered(id WindowID) bool {
	_, ok := m.registry.Lookup(id)
	return ok
}

// Registered returns the monitored window ids in ascending order.
func (m *Manager) Registered() []WindowID {
	return m.registry.IDs()
}

// Statuses describes every registration, ordered by window id.
func (m *Manager) Statuses() []Status {
	statuses := []Status{}

	for _, id := range m.registry.IDs() {
		reg, ok := m.registry.Lookup(id)
		if !ok {
			continue
		}

		hooks := 0
		if reg.hooks != nil {
			hooks = reg.hooks.Installed()
		}

		statuses = append(statuses, Status{
			Window:    reg.ID,
			PID:       reg.Owner.PID,
			TID:       reg.Owner.TID,
			Session:   reg.Session.String(),
			Hooks:     hooks,
			CreatedAt: reg.CreatedAt,
		})
	}

	return statuses
}

// Prune unregisters windows that no longer exist and returns their ids.
// Stale registrations are never removed implicitly.
func (m *Manager) Prune() []WindowID {
	m.registry.mu.Lock()
	var gone []*Registration
	for id := range m.registry.entries {
		if m.platform.Exists(id) {
			continue
		}

		reg, _ := m.registry.remove(id)
		m.detach(reg)
		gone = append(gone, reg)
	}
	m.registry.mu.Unlock()

	pruned := make([]WindowID, 0, len(gone))
	for _, reg := range gone {
		m.release(reg)
		m.metrics.pruned.Inc()
		pruned = append(pruned, reg.ID)

		m.log.Info("Pruned registration of destroyed window",
			slog.Uint64("hwnd", uint64(reg.ID)),
			slog.String("session", reg.Session.String()),
		)
	}

	slices.Sort(pruned)
	return pruned
}

// Close unregisters every window and stops event delivery. Register fails
// after Close.
func (m *Manager) Close() {
	m.registry.mu.Lock()
	if m.closed {
		m.registry.mu.Unlock()
		return
	}

	m.closed = true
	var gone []*Registration
	for id := range m.registry.entries {
		reg, _ := m.registry.remove(id)
		m.detach(reg)
		gone = append(gone, reg)
	}
	m.registry.mu.Unlock()

	for _, reg := range gone {
		m.release(reg)
	}

	if !m.dispatcher.stop(m.opts.DrainTimeout) {
		m.log.Warn("Timed out draining event queue", slog.Duration("timeout", m.opts.DrainTimeout))
	}

	m.log.Debug("Window monitor closed")
}
