package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (id, company_id, name, price, billing_interval, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.CompanyID,
		plan.Name,
		plan.Price,
		plan.Interval,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, price, billing_interval, created_at, updated_at
		 FROM plans WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name domain.Name) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, price, billing_interval, created_at, updated_at
		 FROM plans WHERE company_id = ? AND name = ?`,
		companyID,
		name,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, price, billing_interval, created_at, updated_at
		 FROM plans WHERE company_id = ?
		 ORDER BY price ASC, id ASC`,
		companyID,
	).Scan(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Exec(
		`UPDATE plans SET name = ?, price = ?, billing_interval = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		plan.Name,
		plan.Price,
		plan.Interval,
		plan.UpdatedAt,
		plan.CompanyID,
		plan.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM plans WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Error
}

func (r *repo) CountClients(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM clients WHERE company_id = ? AND plan_id = ?`,
		companyID,
		id,
	).Scan(&count).Error
	return count, err
}
