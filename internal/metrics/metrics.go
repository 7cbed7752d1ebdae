// Package metrics exposes Store activity as prometheus series.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/core"
)

// Collector observes Store transitions.
type Collector struct {
	Registry *prometheus.Registry

	actions  *prometheus.CounterVec
	effects  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	entities prometheus.Gauge
	clock    prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamperf",
			Name:      "actions_applied_total",
			Help:      "Actions applied by the store, by action name.",
		}, []string{"action"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamperf",
			Name:      "effects_emitted_total",
			Help:      "Effects returned by the reducer, by effect name.",
		}, []string{"effect"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "teamperf",
			Name:      "reduce_seconds",
			Help:      "Time spent in the reducer per action.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"action"}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamperf",
			Name:      "entities",
			Help:      "Entities in the current state tree.",
		}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamperf",
			Name:      "clock",
			Help:      "Global clock value of the current state.",
		}),
	}
	c.Registry.MustRegister(c.actions, c.effects, c.latency, c.entities, c.clock)
	return c
}

// Observe implements core.Observer.
func (c *Collector) Observe(tr core.Transition) {
	name := tr.Action.ActionName()
	c.actions.WithLabelValues(name).Inc()
	c.latency.WithLabelValues(name).Observe(tr.Elapsed.Seconds())
	for _, e := range tr.Effects {
		c.effects.WithLabelValues(e.EffectName()).Inc()
	}
	c.entities.Set(float64(tr.State.EntityCount()))
	c.clock.Set(tr.State.Clock)
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("metrics listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
