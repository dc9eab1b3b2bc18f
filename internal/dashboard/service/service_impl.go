package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/dashboard/aggregate"
	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
	"github.com/smallbiznis/clientbase/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   domain.Store
	Metrics *metrics.Metrics `optional:"true"`
}

// Service fetches from the store then hands the rows to the pure aggregate
// functions. It holds no per-request state.
type Service struct {
	log     *zap.Logger
	store   domain.Store
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("dashboard.service"),
		store:   p.Store,
		metrics: p.Metrics,
	}
}

func (s *Service) GetTrailingRevenueSeries(ctx context.Context, companyID snowflake.ID, now time.Time, windowSizeMonths int) ([]domain.SeriesPoint, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if windowSizeMonths <= 0 {
		return nil, domain.ErrInvalidWindow
	}

	window := aggregate.Window(now, windowSizeMonths)
	since := window[0].Start()

	payments, err := s.store.ListPaidPayments(ctx, companyID, since)
	if err != nil {
		return nil, &domain.UpstreamFetchError{Op: "paid payments", Err: err}
	}

	buckets, malformed := aggregate.Bucket(payments)
	s.reportMalformed(ctx, companyID, malformed)

	return aggregate.Normalize(now, windowSizeMonths, buckets), nil
}

func (s *Service) GetKPISnapshot(ctx context.Context, companyID snowflake.ID, now time.Time) (domain.KPISnapshot, error) {
	if companyID == 0 {
		return domain.KPISnapshot{}, domain.ErrInvalidCompany
	}

	clients, err := s.store.ListClients(ctx, companyID)
	if err != nil {
		return domain.KPISnapshot{}, &domain.UpstreamFetchError{Op: "clients", Err: err}
	}

	month := domain.MonthKeyOf(now)
	payments, err := s.store.ListPaidPaymentsInMonth(ctx, companyID, month.Start(), month.AddMonths(1).Start())
	if err != nil {
		return domain.KPISnapshot{}, &domain.UpstreamFetchError{Op: "paid payments in month", Err: err}
	}

	snapshot, malformed := aggregate.Snapshot(clients, payments)
	s.reportMalformed(ctx, companyID, malformed)
	return snapshot, nil
}

func (s *Service) reportMalformed(ctx context.Context, companyID snowflake.ID, records []domain.MalformedRecord) {
	if len(records) == 0 {
		return
	}
	for _, record := range records {
		s.log.Warn("skipping malformed payment",
			zap.String("company_id", companyID.String()),
			zap.String("payment_id", record.PaymentID.String()),
			zap.String("reason", record.Reason),
		)
	}
	s.metrics.RecordMalformedPayments(ctx, companyID.String(), len(records))
}
