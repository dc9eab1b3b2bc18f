package tenantmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

var Module = fx.Module("tenant.metrics",
	fx.Provide(NewRegistry),
	fx.Provide(NewCollector),
	fx.Provide(NewPusher),
	fx.Provide(NewWorker),
	fx.Invoke(registerWorker),
)
