package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	"github.com/smallbiznis/clientbase/internal/plan/domain"
	"github.com/smallbiznis/clientbase/internal/plan/repository"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testCompanyID = int64(1001)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Plan{}, &clientdomain.Client{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func companyCtx() context.Context {
	return orgcontext.WithCompanyID(context.Background(), testCompanyID)
}

func TestCreateAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := companyCtx()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "premium", Price: 40})
	require.NoError(t, err)
	basic, err := svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: 15, Interval: "Monthly"})
	require.NoError(t, err)
	assert.Equal(t, domain.NameBasic, basic.Name)
	assert.Equal(t, "monthly", basic.Interval)

	plans, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, domain.NameBasic, plans[0].Name)
	assert.Equal(t, domain.NamePremium, plans[1].Name)

	other, err := svc.List(orgcontext.WithCompanyID(context.Background(), 2002))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := companyCtx()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Gold", Price: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Pro", Price: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Pro", Price: 25, Interval: "weekly"})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "Pro", Price: 25})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Pro", Price: 25})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "PRO", Price: 30})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := companyCtx()

	plan, err := svc.Create(ctx, domain.CreateRequest{Name: "Pro", Price: 25})
	require.NoError(t, err)

	price := 27.5
	interval := "yearly"
	updated, err := svc.Update(ctx, plan.ID.String(), domain.UpdateRequest{Price: &price, Interval: &interval})
	require.NoError(t, err)
	assert.Equal(t, 27.5, updated.Price)
	assert.Equal(t, "yearly", updated.Interval)

	reloaded, err := svc.Get(ctx, plan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 27.5, reloaded.Price)

	_, err = svc.Update(ctx, "not-an-id", domain.UpdateRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteRejectsPlansInUse(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := companyCtx()

	plan, err := svc.Create(ctx, domain.CreateRequest{Name: "Basic", Price: 15})
	require.NoError(t, err)

	require.NoError(t, conn.Create(&clientdomain.Client{
		ID:        snowflake.ID(5),
		CompanyID: snowflake.ID(testCompanyID),
		PlanID:    plan.ID,
		Name:      "Jane",
		Email:     "jane@example.com",
		Status:    clientdomain.StatusActive,
		Metadata:  datatypes.JSONMap{},
	}).Error)

	err = svc.Delete(ctx, plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrInUse)

	require.NoError(t, conn.Exec(`DELETE FROM clients`).Error)
	require.NoError(t, svc.Delete(ctx, plan.ID.String()))

	_, err = svc.Get(ctx, plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
