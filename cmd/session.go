package cmd

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
	"github.com/Norgate-AV/winmon/internal/platform"
)

// session bundles the resources one command needs
type session struct {
	cfg      *Config
	log      logger.LoggerInterface
	backend  platform.Backend
	manager  *monitor.Manager
	registry *prometheus.Registry
}

// newBackend is replaced in tests
var newBackend = platform.New

// openSession loads config, starts logging and the native backend, and
// composes a manager on top of it
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := NewConfigFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	log, err := initializeLogger(cfg)
	if err != nil {
		return nil, err
	}

	log.Debug("Flags set",
		slog.Bool("verbose", cfg.Verbose),
		slog.String("format", cfg.Format),
		slog.String("metricsAddr", cfg.MetricsAddr),
		slog.Duration("pruneInterval", cfg.PruneInterval),
		slog.Int("queueSize", cfg.QueueSize),
	)

	backend, err := newBackend(log)
	if err != nil {
		log.Error("Failed to start window backend", slog.Any("error", err))
		log.Close()
		return nil, fmt.Errorf("failed to start window backend: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager := monitor.NewManager(backend, log, monitor.Options{
		QueueSize: cfg.QueueSize,
		Metrics:   monitor.NewMetrics(registry),
	})

	return &session{
		cfg:      cfg,
		log:      log,
		backend:  backend,
		manager:  manager,
		registry: registry,
	}, nil
}

// Close unregisters every window, then stops the backend and the logger.
// Every registration is gone before the hook thread stops.
func (s *session) Close() {
	s.manager.Close()
	s.backend.Close()
	s.log.Close()
}
