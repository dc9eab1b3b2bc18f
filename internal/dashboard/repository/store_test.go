package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	paymentdomain "github.com/smallbiznis/clientbase/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/clientbase/internal/payment/repository"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestStoreQueries(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&clientdomain.Client{}, &paymentdomain.Payment{}))

	ctx := context.Background()
	company := snowflake.ID(7)
	other := snowflake.ID(8)
	payments := paymentrepo.Provide()

	insert := func(id int64, companyID snowflake.ID, status paymentdomain.Status, amount float64, paidAt *time.Time) {
		created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, payments.Insert(ctx, conn, &paymentdomain.Payment{
			ID:        snowflake.ID(id),
			CompanyID: companyID,
			ClientID:  snowflake.ID(1),
			Amount:    amount,
			Status:    status,
			Method:    paymentdomain.MethodCash,
			Reference: snowflake.ID(id).String(),
			PaidAt:    paidAt,
			CreatedAt: created,
		}))
	}
	ts := func(month time.Month, d int) *time.Time {
		v := time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	insert(1, company, paymentdomain.StatusPaid, 10, ts(1, 31))
	insert(2, company, paymentdomain.StatusPaid, 20, ts(2, 1))
	insert(3, company, paymentdomain.StatusPaid, 30, ts(3, 1))
	insert(4, company, paymentdomain.StatusPending, 40, nil)
	insert(5, company, paymentdomain.StatusPaid, 50, nil)
	insert(6, other, paymentdomain.StatusPaid, 60, ts(2, 10))

	s := NewStore(Params{DB: conn, Payments: payments})

	since, err := s.ListPaidPayments(ctx, company, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ids := map[snowflake.ID]bool{}
	for _, p := range since {
		ids[p.ID] = true
	}
	assert.Equal(t, map[snowflake.ID]bool{2: true, 3: true, 5: true}, ids)

	month, err := s.ListPaidPaymentsInMonth(ctx, company,
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	var total float64
	for _, p := range month {
		if p.PaidAt != nil {
			total += p.Amount
		}
	}
	assert.Equal(t, 20.0, total)

	for i, status := range []clientdomain.Status{clientdomain.StatusActive, clientdomain.StatusPending} {
		require.NoError(t, conn.Create(&clientdomain.Client{
			ID:        snowflake.ID(100 + i),
			CompanyID: company,
			PlanID:    snowflake.ID(1),
			Name:      "c",
			Email:     snowflake.ID(100+i).String() + "@example.com",
			Status:    status,
			Metadata:  datatypes.JSONMap{},
		}).Error)
	}
	rows, err := s.ListClients(ctx, company)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	none, err := s.ListClients(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)
}
