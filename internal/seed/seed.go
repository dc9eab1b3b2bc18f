// Package seed provisions demo data for local environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/clientbase/internal/auth/domain"
	"github.com/smallbiznis/clientbase/internal/auth/password"
	authrepo "github.com/smallbiznis/clientbase/internal/auth/repository"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	companyrepo "github.com/smallbiznis/clientbase/internal/company/repository"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	planrepo "github.com/smallbiznis/clientbase/internal/plan/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoCompanyName = "Wave Services"
	DemoCompanySlug = "wave-services"

	DemoAdminEmail = "admin@wave.services"
	DemoStaffEmail = "staff@wave.services"
	DemoPassword   = "wave-demo-2024"
)

var demoPlans = []struct {
	name  plandomain.Name
	price float64
}{
	{plandomain.NameBasic, 15},
	{plandomain.NamePro, 25},
	{plandomain.NamePremium, 40},
}

// EnsureDemo creates the demo company, its users and plans. Rows that already
// exist are left alone so it is safe on every start.
func EnsureDemo(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := ensureCompanyTx(ctx, tx, node, now)
		if err != nil {
			return err
		}
		if err := ensureUserTx(ctx, tx, node, company.ID, "Wave Admin", DemoAdminEmail, authdomain.RoleAdmin, now); err != nil {
			return err
		}
		if err := ensureUserTx(ctx, tx, node, company.ID, "Wave Staff", DemoStaffEmail, authdomain.RoleStaff, now); err != nil {
			return err
		}
		if err := ensurePlansTx(ctx, tx, node, company.ID, now); err != nil {
			return err
		}
		log.Info("demo data ready", zap.String("company_id", company.ID.String()))
		return nil
	})
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (*companydomain.Company, error) {
	repo := companyrepo.Provide()
	existing, err := repo.FindBySlug(ctx, tx, DemoCompanySlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	company := &companydomain.Company{
		ID:        node.Generate(),
		Name:      DemoCompanyName,
		Slug:      DemoCompanySlug,
		Settings:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Insert(ctx, tx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID, name, email string, role authdomain.Role, now time.Time) error {
	repo := authrepo.Provide()
	existing, err := repo.FindByEmail(ctx, tx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := password.Hash(DemoPassword)
	if err != nil {
		return err
	}
	return repo.Insert(ctx, tx, &authdomain.User{
		ID:           node.Generate(),
		CompanyID:    companyID,
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func ensurePlansTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID, now time.Time) error {
	repo := planrepo.Provide()
	for _, p := range demoPlans {
		existing, err := repo.FindByName(ctx, tx, companyID, p.name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := repo.Insert(ctx, tx, &plandomain.Plan{
			ID:        node.Generate(),
			CompanyID: companyID,
			Name:      p.name,
			Price:     p.price,
			Interval:  plandomain.DefaultInterval,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}
