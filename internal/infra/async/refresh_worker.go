package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// Job is one refresh run.
type Job func(ctx context.Context) error

type refreshMetrics struct {
	runs        *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

func newRefreshMetrics(registerer prometheus.Registerer) (*refreshMetrics, error) {
	m := &refreshMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dronefleet",
			Name:      "refresh_runs_total",
			Help:      "Number of scheduled list refreshes by result",
		}, []string{"name", "result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dronefleet",
			Name:      "refresh_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}),
	}

	runs, err := register(registerer, m.runs)
	if err != nil {
		return nil, err
	}
	lastSuccess, err := register(registerer, m.lastSuccess)
	if err != nil {
		return nil, err
	}
	m.runs, m.lastSuccess = runs, lastSuccess
	return m, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("registering refresh metrics: %w", err)
	}
	return c, nil
}

func NewRefreshWorker(name, schedule string, job Job, registerer prometheus.Registerer) (*RefreshWorker, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parsing refresh schedule %q: %w", schedule, err)
	}

	metrics, err := newRefreshMetrics(registerer)
	if err != nil {
		return nil, err
	}

	return &RefreshWorker{
		name:     name,
		schedule: schedule,
		job:      job,
		metrics:  metrics,
		stop:     make(chan struct{}),
	}, nil
}

var _ Worker = &RefreshWorker{}

// RefreshWorker runs a job once on start and then on every tick of a cron
// schedule, until its context is cancelled or it is shut down. Runs never
// overlap; a tick that fires while a run is in progress is skipped.
type RefreshWorker struct {
	name     string
	schedule string
	job      Job
	metrics  *refreshMetrics

	stop     chan struct{}
	stopOnce sync.Once
}

func (w *RefreshWorker) Run(ctx context.Context, done func()) {
	slog.Debug("refresh worker started", slog.String("name", w.name), slog.String("schedule", w.schedule))
	defer done()

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(w.schedule, func() { w.refresh(ctx) }); err != nil {
		slog.Error("scheduling refresh", slog.String("name", w.name), slog.Any("error", err))
		return
	}

	w.refresh(ctx)
	scheduler.Start()

	select {
	case <-ctx.Done():
		slog.Info("refresh worker cancelled", slog.String("name", w.name))
	case <-w.stop:
		slog.Info("refresh worker stopped", slog.String("name", w.name))
	}

	<-scheduler.Stop().Done()
}

func (w *RefreshWorker) Shutdown() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if err := w.job(ctx); err != nil {
		w.metrics.runs.WithLabelValues(w.name, "failure").Inc()
		slog.Error("refreshing", slog.String("name", w.name), slog.Any("error", err))
		return
	}

	w.metrics.runs.WithLabelValues(w.name, "success").Inc()
	w.metrics.lastSuccess.Set(float64(time.Now().Unix()))
}
