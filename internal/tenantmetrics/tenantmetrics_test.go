package tenantmetrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/prometheus/prompb"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	clientrepo "github.com/smallbiznis/clientbase/internal/client/repository"
	"github.com/smallbiznis/clientbase/internal/clock"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	companyrepo "github.com/smallbiznis/clientbase/internal/company/repository"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
	"gorm.io/datatypes"
)

func newCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&companydomain.Company{}, &clientdomain.Client{}))

	require.NoError(t, conn.Create(&companydomain.Company{ID: 1, Name: "Wave", Slug: "wave", Settings: datatypes.JSONMap{}}).Error)
	require.NoError(t, conn.Create(&companydomain.Company{ID: 2, Name: "Tide", Slug: "tide", Settings: datatypes.JSONMap{}}).Error)
	statuses := []clientdomain.Status{clientdomain.StatusActive, clientdomain.StatusActive, clientdomain.StatusPending}
	for i, status := range statuses {
		require.NoError(t, conn.Create(&clientdomain.Client{
			ID:        snowflake.ID(10 + i),
			CompanyID: snowflake.ID(1 + i%2),
			PlanID:    1,
			Name:      "c",
			Email:     snowflake.ID(10+i).String() + "@example.com",
			Status:    status,
			Metadata:  datatypes.JSONMap{},
		}).Error)
	}

	registry := prometheus.NewRegistry()
	collector, err := NewCollector(CollectorParams{
		DB:        conn,
		Registry:  registry,
		Companies: companyrepo.Provide(),
		Clients:   clientrepo.Provide(),
	})
	require.NoError(t, err)
	return collector, registry
}

func TestCollectorRefresh(t *testing.T) {
	collector, _ := newCollector(t)
	require.NoError(t, collector.Refresh(context.Background()))

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.companiesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.clientsByState.WithLabelValues("ACTIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.clientsByState.WithLabelValues("PENDING")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.clientsByState.WithLabelValues("CANCELLED")))
}

func TestRemoteWritePush(t *testing.T) {
	collector, registry := newCollector(t)
	require.NoError(t, collector.Refresh(context.Background()))

	var (
		mu       sync.Mutex
		received prompb.WriteRequest
		headers  http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		headers = r.Header.Clone()
		require.NoError(t, proto.Unmarshal(decoded, protoadapt.MessageV2Of(&received)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	pusher := NewRemoteWritePusher(srv.URL, "secret", clock.NewFakeClock(now))
	require.NoError(t, pusher.Push(context.Background(), registry))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))

	names := map[string]float64{}
	for _, ts := range received.Timeseries {
		require.Len(t, ts.Samples, 1)
		assert.Equal(t, now.UnixMilli(), ts.Samples[0].Timestamp)
		name := ""
		status := ""
		for _, label := range ts.Labels {
			switch label.Name {
			case "__name__":
				name = label.Value
			case "status":
				status = label.Value
			}
		}
		names[name+"/"+status] = ts.Samples[0].Value
	}
	assert.Equal(t, 2.0, names["clientbase_companies_total/"])
	assert.Equal(t, 2.0, names["clientbase_clients/ACTIVE"])
}

func TestRemoteWritePushFailsOnErrorStatus(t *testing.T) {
	collector, registry := newCollector(t)
	require.NoError(t, collector.Refresh(context.Background()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "", nil).Push(context.Background(), registry)
	assert.Error(t, err)
}

func TestPushgatewayPush(t *testing.T) {
	collector, registry := newCollector(t)
	require.NoError(t, collector.Refresh(context.Background()))

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pusher := NewPushgatewayPusher(srv.URL, "clientbase", map[string]string{"environment": "test"})
	require.NoError(t, pusher.Push(context.Background(), registry))
	assert.Equal(t, "/metrics/job/clientbase/environment/test", path)
}

func TestNewPusherSelection(t *testing.T) {
	log := zap.NewNop()
	clk := clock.SystemClock{}

	assert.Nil(t, NewPusher(config.Config{}, clk, log))

	cfg := config.Config{AppName: "clientbase"}
	cfg.MetricsExport = config.MetricsExportConfig{Enabled: true, Exporter: "prometheus_remote_write", Endpoint: "http://localhost:9090/api/v1/write"}
	_, ok := NewPusher(cfg, clk, log).(*RemoteWritePusher)
	assert.True(t, ok)

	cfg.MetricsExport.Exporter = "prometheus_pushgateway"
	_, ok = NewPusher(cfg, clk, log).(*PushgatewayPusher)
	assert.True(t, ok)

	cfg.MetricsExport.Exporter = "statsd"
	assert.Nil(t, NewPusher(cfg, clk, log))

	cfg.MetricsExport.Exporter = "prometheus_remote_write"
	cfg.MetricsExport.Endpoint = ""
	assert.Nil(t, NewPusher(cfg, clk, log))
}

type recordingPusher struct {
	calls int
}

func (p *recordingPusher) Push(context.Context, *prometheus.Registry) error {
	p.calls++
	return nil
}

func TestWorkerRunOnce(t *testing.T) {
	collector, registry := newCollector(t)
	pusher := &recordingPusher{}
	worker := &Worker{
		log:       zap.NewNop(),
		registry:  registry,
		collector: collector,
		pusher:    pusher,
		interval:  time.Minute,
	}

	require.NoError(t, worker.RunOnce(context.Background()))
	assert.Equal(t, 1, pusher.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.companiesTotal))
}
