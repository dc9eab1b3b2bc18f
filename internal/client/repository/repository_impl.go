package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/pkg/db/option"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, company_id, plan_id, name, email, phone, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.CompanyID,
		client.PlanID,
		client.Name,
		client.Email,
		client.Phone,
		client.Status,
		client.Metadata,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, plan_id, name, email, phone, status, metadata, created_at, updated_at
		 FROM clients WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, companyID snowflake.ID, email string) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, plan_id, name, email, phone, status, metadata, created_at, updated_at
		 FROM clients WHERE company_id = ? AND email = ?`,
		companyID,
		email,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]domain.Client, error) {
	var clients []domain.Client
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Client{}), companyID, filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, companyID snowflake.ID, status domain.Status) ([]domain.Client, error) {
	var clients []domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, plan_id, name, email, phone, status, metadata, created_at, updated_at
		 FROM clients WHERE company_id = ? AND status = ?
		 ORDER BY created_at ASC, id ASC`,
		companyID,
		status,
	).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Client{}), companyID, filter).
		Count(&total).Error
	return total, err
}

func applyFilter(stmt *gorm.DB, companyID snowflake.ID, filter domain.ListFilter) *gorm.DB {
	stmt = stmt.Where("company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
	return stmt
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET plan_id = ?, name = ?, email = ?, phone = ?, status = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		client.PlanID,
		client.Name,
		client.Email,
		client.Phone,
		client.Status,
		client.UpdatedAt,
		client.CompanyID,
		client.ID,
	).Error
}

// UpdateStatus moves a client from one status to another and reports whether
// a row changed.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, from, to domain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE clients SET status = ?, updated_at = ?
		 WHERE company_id = ? AND id = ? AND status = ?`,
		to,
		at,
		companyID,
		id,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) ([]domain.StatusCount, error) {
	var rows []domain.StatusCount
	err := db.WithContext(ctx).Raw(
		`SELECT status, COUNT(1) AS count FROM clients GROUP BY status ORDER BY status`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
