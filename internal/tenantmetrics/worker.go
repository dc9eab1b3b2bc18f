package tenantmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/clientbase/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultInterval = 5 * time.Minute
	refreshTimeout  = 30 * time.Second
)

type WorkerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Registry  *prometheus.Registry
	Collector *Collector
	Pusher    Pusher `optional:"true"`
}

type Worker struct {
	log       *zap.Logger
	registry  *prometheus.Registry
	collector *Collector
	pusher    Pusher
	interval  time.Duration
}

func NewWorker(p WorkerParams) *Worker {
	interval := time.Duration(p.Config.MetricsExport.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Worker{
		log:       p.Log.Named("tenantmetrics"),
		registry:  p.Registry,
		collector: p.Collector,
		pusher:    p.Pusher,
		interval:  interval,
	}
}

// RunOnce refreshes the gauges and pushes them when an exporter is configured.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if err := w.collector.Refresh(ctx); err != nil {
		return err
	}
	if w.pusher == nil {
		return nil
	}
	return w.pusher.Push(ctx, w.registry)
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn("tenant metrics refresh failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func registerWorker(lc fx.Lifecycle, w *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.log.Info("starting tenant metrics worker", zap.Duration("interval", w.interval))
			go func() {
				defer close(done)
				w.run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
