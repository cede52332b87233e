// Package metrics exposes console internals and the sampled container usage
// to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rusenback/dockerconsole/internal/grid"
	"github.com/rusenback/dockerconsole/internal/model"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	layoutPasses prometheus.Counter
	gridColumns  prometheus.Gauge
	gridVisible  prometheus.Gauge
	samples      *prometheus.CounterVec
	cpu          *prometheus.GaugeVec
	memory       *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		layoutPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dockerconsole_layout_passes_total",
			Help: "Number of grid layout passes executed",
		}),
		gridColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dockerconsole_grid_columns",
			Help: "Column count of the last grid layout",
		}),
		gridVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dockerconsole_grid_visible_cards",
			Help: "Cards visible after the last grid layout",
		}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dockerconsole_stats_samples_total",
			Help: "Stats samples received per container",
		}, []string{"container"}),
		cpu: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dockerconsole_container_cpu_percent",
			Help: "Last sampled CPU usage of a container",
		}, []string{"container"}),
		memory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dockerconsole_container_memory_percent",
			Help: "Last sampled memory usage of a container",
		}, []string{"container"}),
	}

	r.registry.MustRegister(
		r.layoutPasses,
		r.gridColumns,
		r.gridVisible,
		r.samples,
		r.cpu,
		r.memory,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveLayout records a grid layout result
func (r *Recorder) ObserveLayout(res grid.Result) {
	if r == nil {
		return
	}
	r.layoutPasses.Inc()
	r.gridColumns.Set(float64(res.Columns))
	r.gridVisible.Set(float64(res.Visible))
}

// ObserveStats records a stats sample of the named container
func (r *Recorder) ObserveStats(name string, s *model.Stats) {
	if r == nil || s == nil {
		return
	}
	r.samples.WithLabelValues(name).Inc()
	if s.CPUKnown {
		r.cpu.WithLabelValues(name).Set(s.CPUPercent)
	}
	r.memory.WithLabelValues(name).Set(s.MemoryPercent())
}

// WatchDropped exports the number of history samples the store discarded
func (r *Recorder) WatchDropped(dropped func() int64) {
	if r == nil {
		return
	}
	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "dockerconsole_history_dropped_total",
		Help: "Stats samples discarded because the history write queue was full",
	}, func() float64 { return float64(dropped()) }))
}

// Forget drops the per-container series, e.g. after the container is removed
func (r *Recorder) Forget(name string) {
	if r == nil {
		return
	}
	r.samples.DeleteLabelValues(name)
	r.cpu.DeleteLabelValues(name)
	r.memory.DeleteLabelValues(name)
}

// Handler returns the HTTP routes of the metrics endpoint
func (r *Recorder) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	return router
}

// Server serves the metrics endpoint in the background
type Server struct {
	srv *http.Server
	ln  net.Listener
	log *slog.Logger
}

// Serve listens on addr and serves r until Shutdown
func Serve(addr string, r *Recorder, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           r.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:  ln,
		log: logger.With("component", "metrics"),
	}

	go func() {
		s.log.Info("metrics endpoint listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server stopped", "error", err)
		}
	}()

	return s, nil
}

// Addr returns the bound address
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
