package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
	"github.com/Norgate-AV/winmon/internal/timeouts"
	"github.com/Norgate-AV/winmon/internal/version"
)

// statusSource is the part of the manager the status endpoints read
type statusSource interface {
	Statuses() []monitor.Status
}

// newStatusRouter serves metrics and registration status for a watch session
func newStatusRouter(src statusSource, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/windows", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, src.Statuses())
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, version.Get())
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// startStatusServer listens on addr and serves handler until ctx is done.
// The returned channel is closed once the server has shut down.
func startStatusServer(ctx context.Context, addr string, handler http.Handler, log logger.LoggerInterface) (<-chan struct{}, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeouts.HTTPReadHeaderTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Status server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.HTTPShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Status server shutdown incomplete", slog.Any("error", err))
		}
	}()

	log.Info("Serving status", slog.String("addr", ln.Addr().String()))
	return done, nil
}
