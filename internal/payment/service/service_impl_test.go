package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	clientrepo "github.com/smallbiznis/clientbase/internal/client/repository"
	"github.com/smallbiznis/clientbase/internal/clock"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	companyrepo "github.com/smallbiznis/clientbase/internal/company/repository"
	companyservice "github.com/smallbiznis/clientbase/internal/company/service"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	"github.com/smallbiznis/clientbase/internal/payment/domain"
	"github.com/smallbiznis/clientbase/internal/payment/repository"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	planrepo "github.com/smallbiznis/clientbase/internal/plan/repository"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
	ctx     context.Context
	company companydomain.Company
	plan    plandomain.Plan
	node    *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&companydomain.Company{},
		&plandomain.Plan{},
		&clientdomain.Client{},
		&domain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC))

	companies := companyservice.New(companyservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  companyrepo.Provide(),
	})
	company, err := companies.Create(context.Background(), nil, companydomain.CreateCompanyRequest{Name: "Wave Services"})
	require.NoError(t, err)

	plans := planrepo.Provide()
	plan := plandomain.Plan{
		ID:        node.Generate(),
		CompanyID: company.ID,
		Name:      plandomain.NamePro,
		Price:     25,
		Interval:  plandomain.DefaultInterval,
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	require.NoError(t, plans.Insert(context.Background(), conn, &plan))

	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       repository.Provide(),
		ClientRepo: clientrepo.Provide(),
		PlanRepo:   plans,
		Companies:  companies,
	})

	return &fixture{
		svc:     svc,
		db:      conn,
		clock:   clk,
		ctx:     orgcontext.WithCompanyID(context.Background(), int64(company.ID)),
		company: company,
		plan:    plan,
		node:    node,
	}
}

func (f *fixture) addClient(t *testing.T, email string, status clientdomain.Status) clientdomain.Client {
	t.Helper()
	client := clientdomain.Client{
		ID:        f.node.Generate(),
		CompanyID: f.company.ID,
		PlanID:    f.plan.ID,
		Name:      "Client " + email,
		Email:     email,
		Status:    status,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, clientrepo.Provide().Insert(context.Background(), f.db, &client))
	return client
}

func (f *fixture) clientStatus(t *testing.T, id snowflake.ID) clientdomain.Status {
	t.Helper()
	client, err := clientrepo.Provide().FindByID(context.Background(), f.db, f.company.ID, id)
	require.NoError(t, err)
	require.NotNil(t, client)
	return client.Status
}

func TestRecordActivatesPendingClient(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "jane@example.com", clientdomain.StatusPending)

	result, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "nequi"})
	require.NoError(t, err)
	assert.True(t, result.ClientActivated)
	assert.Equal(t, domain.StatusPaid, result.Payment.Status)
	assert.Equal(t, domain.MethodNequi, result.Payment.Method)
	assert.Equal(t, 25.0, result.Payment.Amount)
	require.NotNil(t, result.Payment.PaidAt)
	assert.True(t, result.Payment.PaidAt.Equal(f.clock.Now()))
	assert.Len(t, result.Payment.Reference, 26)

	assert.Equal(t, clientdomain.StatusActive, f.clientStatus(t, client.ID))
}

func TestRecordKeepsNonPendingClientStatus(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "sus@example.com", clientdomain.StatusSuspended)

	amount := 12.5
	result, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH", Amount: &amount})
	require.NoError(t, err)
	assert.False(t, result.ClientActivated)
	assert.Equal(t, 12.5, result.Payment.Amount)
	assert.Equal(t, clientdomain.StatusSuspended, f.clientStatus(t, client.ID))
}

func TestRecordPendingPaymentDoesNotActivate(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "later@example.com", clientdomain.StatusPending)

	result, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "TRANSFER", Status: "pending"})
	require.NoError(t, err)
	assert.False(t, result.ClientActivated)
	assert.Nil(t, result.Payment.PaidAt)
	assert.Equal(t, clientdomain.StatusPending, f.clientStatus(t, client.ID))
}

func TestRecordValidation(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "v@example.com", clientdomain.StatusPending)

	_, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: "x", Method: "CASH"})
	assert.ErrorIs(t, err, domain.ErrInvalidClient)

	_, err = f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "BITCOIN"})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	zero := 0.0
	_, err = f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH", Amount: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH", Status: "OVERDUE"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.Record(f.ctx, domain.RecordRequest{ClientID: f.node.Generate().String(), Method: "CASH"})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)

	_, err = f.svc.Record(context.Background(), domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestMarkOverdueOnlyTouchesPending(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "o@example.com", clientdomain.StatusActive)

	pending, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CARD", Status: "PENDING"})
	require.NoError(t, err)
	paid, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CARD"})
	require.NoError(t, err)

	overdue, err := f.svc.MarkOverdue(f.ctx, pending.Payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, overdue.Status)

	_, err = f.svc.MarkOverdue(f.ctx, pending.Payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotPending)

	_, err = f.svc.MarkOverdue(f.ctx, paid.Payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotPending)

	stored, err := f.svc.Get(f.ctx, paid.Payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)
}

func TestListFiltersNewestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.addClient(t, "a@example.com", clientdomain.StatusActive)
	b := f.addClient(t, "b@example.com", clientdomain.StatusActive)

	var last domain.Payment
	for _, id := range []snowflake.ID{a.ID, b.ID, a.ID} {
		f.clock.Advance(time.Hour)
		res, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: id.String(), Method: "CASH"})
		require.NoError(t, err)
		last = res.Payment
	}
	_, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: b.ID.String(), Method: "CASH", Status: "PENDING"})
	require.NoError(t, err)

	all, err := f.svc.List(f.ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Pagination.Total)

	byClient, err := f.svc.List(f.ctx, domain.ListRequest{ClientID: a.ID.String()})
	require.NoError(t, err)
	require.Len(t, byClient.Data, 2)
	assert.Equal(t, last.ID, byClient.Data[0].ID)

	paid, err := f.svc.List(f.ctx, domain.ListRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Len(t, paid.Data, 3)

	_, err = f.svc.List(f.ctx, domain.ListRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	client := f.addClient(t, "r@example.com", clientdomain.StatusPending)

	paid, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH"})
	require.NoError(t, err)

	doc, err := f.svc.Receipt(f.ctx, paid.Payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "receipt-"+paid.Payment.Reference+".pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))

	pending, err := f.svc.Record(f.ctx, domain.RecordRequest{ClientID: client.ID.String(), Method: "CASH", Status: "PENDING"})
	require.NoError(t, err)
	_, err = f.svc.Receipt(f.ctx, pending.Payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrReceiptUnavailable)
}
