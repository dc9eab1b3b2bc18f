package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/client/repository"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	planrepo "github.com/smallbiznis/clientbase/internal/plan/repository"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCompanyID = int64(1001)

type fixture struct {
	svc   domain.Service
	basic plandomain.Plan
	pro   plandomain.Plan
	clock *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&plandomain.Plan{}, &domain.Client{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	plans := planrepo.Provide()
	basic := plandomain.Plan{ID: node.Generate(), CompanyID: snowflake.ID(testCompanyID), Name: plandomain.NameBasic, Price: 15, Interval: "monthly", CreatedAt: clk.Now(), UpdatedAt: clk.Now()}
	pro := plandomain.Plan{ID: node.Generate(), CompanyID: snowflake.ID(testCompanyID), Name: plandomain.NamePro, Price: 25, Interval: "monthly", CreatedAt: clk.Now(), UpdatedAt: clk.Now()}
	require.NoError(t, plans.Insert(context.Background(), conn, &basic))
	require.NoError(t, plans.Insert(context.Background(), conn, &pro))

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		PlanRepo: plans,
	})
	return fixture{svc: svc, basic: basic, pro: pro, clock: clk}
}

func companyCtx() context.Context {
	return orgcontext.WithCompanyID(context.Background(), testCompanyID)
}

func TestCreateStartsPending(t *testing.T) {
	f := newFixture(t)

	phone := " +57 300 123 4567 "
	client, err := f.svc.Create(companyCtx(), domain.CreateRequest{
		Name:   "Jane Doe",
		Email:  "Jane@Example.com",
		Phone:  &phone,
		PlanID: f.basic.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, client.Status)
	assert.Equal(t, "jane@example.com", client.Email)
	require.NotNil(t, client.Phone)
	assert.Equal(t, "+57 300 123 4567", *client.Phone)
	require.NotNil(t, client.Plan)
	assert.Equal(t, plandomain.NameBasic, client.Plan.Name)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := companyCtx()

	_, err := f.svc.Create(ctx, domain.CreateRequest{Name: "", Email: "a@b.co", PlanID: f.basic.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "A", Email: "bad", PlanID: f.basic.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "A", Email: "a@b.co", PlanID: "999"})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "A", Email: "a@b.co", PlanID: f.basic.ID.String()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "B", Email: "A@B.CO", PlanID: f.basic.ID.String()})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = f.svc.Create(orgcontext.WithCompanyID(context.Background(), 2002), domain.CreateRequest{Name: "A", Email: "a@b.co", PlanID: f.basic.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestListPaginatesAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := companyCtx()

	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Minute)
		_, err := f.svc.Create(ctx, domain.CreateRequest{
			Name:   fmt.Sprintf("Client %d", i),
			Email:  fmt.Sprintf("client%d@example.com", i),
			PlanID: f.basic.ID.String(),
		})
		require.NoError(t, err)
	}
	maria, err := f.svc.Create(ctx, domain.CreateRequest{Name: "María Gómez", Email: "maria@wave.co", PlanID: f.pro.ID.String()})
	require.NoError(t, err)
	active := "active"
	_, err = f.svc.Update(ctx, maria.ID.String(), domain.UpdateRequest{Status: &active})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, domain.ListRequest{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(6), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.Page)

	filtered, err := f.svc.List(ctx, domain.ListRequest{Status: "ACTIVE"})
	require.NoError(t, err)
	require.Len(t, filtered.Data, 1)
	assert.Equal(t, maria.ID, filtered.Data[0].ID)
	require.NotNil(t, filtered.Data[0].Plan)
	assert.Equal(t, plandomain.NamePro, filtered.Data[0].Plan.Name)

	searched, err := f.svc.List(ctx, domain.ListRequest{Search: "WAVE.CO"})
	require.NoError(t, err)
	assert.Len(t, searched.Data, 1)

	_, err = f.svc.List(ctx, domain.ListRequest{Status: "GONE"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	pending, err := f.svc.ListPendingPayment(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 5)
}

func TestUpdateChangesPlanAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := companyCtx()

	created, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Jane", Email: "jane@example.com", PlanID: f.basic.ID.String()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "John", Email: "john@example.com", PlanID: f.basic.ID.String()})
	require.NoError(t, err)

	planID := f.pro.ID.String()
	updated, err := f.svc.Update(ctx, created.ID.String(), domain.UpdateRequest{PlanID: &planID})
	require.NoError(t, err)
	assert.Equal(t, f.pro.ID, updated.PlanID)
	assert.Equal(t, plandomain.NamePro, updated.Plan.Name)

	taken := "john@example.com"
	_, err = f.svc.Update(ctx, created.ID.String(), domain.UpdateRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	bad := "UNKNOWN"
	_, err = f.svc.Update(ctx, created.ID.String(), domain.UpdateRequest{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	got, err := f.svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	_, err = f.svc.Get(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
