// Package tenantmetrics keeps Prometheus gauges describing how many companies
// and clients the installation serves, and pushes them to a remote store.
package tenantmetrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type CollectorParams struct {
	fx.In

	DB        *gorm.DB
	Registry  *prometheus.Registry
	Companies companydomain.Repository
	Clients   clientdomain.Repository
}

type Collector struct {
	db        *gorm.DB
	companies companydomain.Repository
	clients   clientdomain.Repository

	companiesTotal prometheus.Gauge
	clientsByState *prometheus.GaugeVec
}

func NewCollector(p CollectorParams) (*Collector, error) {
	c := &Collector{
		db:        p.DB,
		companies: p.Companies,
		clients:   p.Clients,
		companiesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clientbase_companies_total",
			Help: "Number of companies registered.",
		}),
		clientsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clientbase_clients",
			Help: "Number of clients across all companies by status.",
		}, []string{"status"}),
	}
	if err := p.Registry.Register(c.companiesTotal); err != nil {
		return nil, fmt.Errorf("register companies gauge: %w", err)
	}
	if err := p.Registry.Register(c.clientsByState); err != nil {
		return nil, fmt.Errorf("register clients gauge: %w", err)
	}
	return c, nil
}

// Refresh reloads every gauge from the database.
func (c *Collector) Refresh(ctx context.Context) error {
	companies, err := c.companies.Count(ctx, c.db)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	counts, err := c.clients.CountByStatus(ctx, c.db)
	if err != nil {
		return fmt.Errorf("count clients: %w", err)
	}

	c.companiesTotal.Set(float64(companies))
	for _, status := range clientdomain.Statuses {
		c.clientsByState.WithLabelValues(string(status)).Set(0)
	}
	for _, row := range counts {
		c.clientsByState.WithLabelValues(string(row.Status)).Set(float64(row.Count))
	}
	return nil
}
