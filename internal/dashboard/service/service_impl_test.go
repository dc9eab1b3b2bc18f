package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const companyID = snowflake.ID(42)

type fakeStore struct {
	payments      []domain.PaidPayment
	monthPayments []domain.PaidPayment
	clients       []domain.ClientStatusRow
	err           error

	since      time.Time
	monthStart time.Time
	monthEnd   time.Time
}

func (f *fakeStore) ListPaidPayments(_ context.Context, _ snowflake.ID, since time.Time) ([]domain.PaidPayment, error) {
	f.since = since
	return f.payments, f.err
}

func (f *fakeStore) ListPaidPaymentsInMonth(_ context.Context, _ snowflake.ID, start, end time.Time) ([]domain.PaidPayment, error) {
	f.monthStart, f.monthEnd = start, end
	return f.monthPayments, f.err
}

func (f *fakeStore) ListClients(context.Context, snowflake.ID) ([]domain.ClientStatusRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.clients, nil
}

func at(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
	return &t
}

func newService(store domain.Store) (domain.Service, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return New(Params{Log: zap.New(core), Store: store}), logs
}

func TestTrailingRevenueSeries(t *testing.T) {
	store := &fakeStore{payments: []domain.PaidPayment{
		{ID: 1, Amount: 100, PaidAt: at(2024, 1, 15)},
		{ID: 2, Amount: 50, PaidAt: at(2024, 1, 20)},
		{ID: 3, Amount: 200, PaidAt: at(2024, 2, 1)},
	}}
	svc, _ := newService(store)

	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	series, err := svc.GetTrailingRevenueSeries(context.Background(), companyID, now, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), store.since)
	assert.Equal(t, []domain.SeriesPoint{
		{MonthLabel: "Jan", Year: 2024, Month: 1, Revenue: 150, PaymentCount: 2},
		{MonthLabel: "Feb", Year: 2024, Month: 2, Revenue: 200, PaymentCount: 1},
	}, series)
}

func TestTrailingRevenueSeriesReportsMalformed(t *testing.T) {
	store := &fakeStore{payments: []domain.PaidPayment{
		{ID: 1, Amount: 100, PaidAt: at(2024, 2, 1)},
		{ID: 2, Amount: 70},
	}}
	svc, logs := newService(store)

	series, err := svc.GetTrailingRevenueSeries(context.Background(), companyID, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 6)
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.Equal(t, 100.0, series[5].Revenue)

	entries := logs.FilterMessage("skipping malformed payment").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].ContextMap()["payment_id"])
}

func TestUpstreamErrorsAreSurfaced(t *testing.T) {
	cause := errors.New("connection reset")
	svc, _ := newService(&fakeStore{err: cause, payments: []domain.PaidPayment{{ID: 1, Amount: 5, PaidAt: at(2024, 2, 1)}}})
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	series, err := svc.GetTrailingRevenueSeries(context.Background(), companyID, now, 6)
	assert.Nil(t, series)
	assert.ErrorIs(t, err, cause)
	var fetchErr *domain.UpstreamFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "paid payments", fetchErr.Op)

	snapshot, err := svc.GetKPISnapshot(context.Background(), companyID, now)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.KPISnapshot{}, snapshot)
}

func TestKPISnapshot(t *testing.T) {
	store := &fakeStore{
		clients: []domain.ClientStatusRow{
			{Status: clientdomain.StatusActive},
			{Status: clientdomain.StatusActive},
			{Status: clientdomain.StatusPending},
			{Status: clientdomain.StatusSuspended},
			{Status: clientdomain.StatusCancelled},
		},
		monthPayments: []domain.PaidPayment{
			{ID: 1, Amount: 25, PaidAt: at(2024, 12, 1)},
			{ID: 2, Amount: 15, PaidAt: at(2024, 12, 31)},
		},
	}
	svc, _ := newService(store)

	snapshot, err := svc.GetKPISnapshot(context.Background(), companyID, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, domain.KPISnapshot{
		TotalClients:        5,
		ActiveClients:       2,
		PendingClients:      1,
		SuspendedClients:    1,
		CancelledClients:    1,
		MonthlyRevenueTotal: 40,
	}, snapshot)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), store.monthStart)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), store.monthEnd)
}

func TestKPISnapshotEmpty(t *testing.T) {
	svc, _ := newService(&fakeStore{})
	snapshot, err := svc.GetKPISnapshot(context.Background(), companyID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.KPISnapshot{}, snapshot)
}

func TestInvalidArguments(t *testing.T) {
	svc, _ := newService(&fakeStore{})

	_, err := svc.GetTrailingRevenueSeries(context.Background(), 0, time.Now(), 6)
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.GetTrailingRevenueSeries(context.Background(), companyID, time.Now(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = svc.GetKPISnapshot(context.Background(), 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}
