package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/payment/domain"
	"github.com/smallbiznis/clientbase/pkg/db/option"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, company_id, client_id, amount, status, method, reference, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.CompanyID,
		payment.ClientID,
		payment.Amount,
		payment.Status,
		payment.Method,
		payment.Reference,
		payment.PaidAt,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, client_id, amount, status, method, reference, paid_at, created_at
		 FROM payments WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]domain.Payment, error) {
	var payments []domain.Payment
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Payment{}), companyID, filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	stmt = option.ApplySortBy("created_at", "desc").Apply(stmt)
	if err := stmt.Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Payment{}), companyID, filter).
		Count(&total).Error
	return total, err
}

func applyFilter(stmt *gorm.DB, companyID snowflake.ID, filter domain.ListFilter) *gorm.DB {
	stmt = stmt.Where("company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	return stmt
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments SET status = ? WHERE company_id = ? AND id = ? AND status = ?`,
		domain.StatusOverdue,
		companyID,
		id,
		domain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListPaid(ctx context.Context, db *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]domain.Payment, error) {
	var payments []domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("company_id = ? AND status = ?", companyID, domain.StatusPaid).
		Where("(paid_at IS NULL OR paid_at >= ?)", from)
	if !to.IsZero() {
		stmt = stmt.Where("(paid_at IS NULL OR paid_at < ?)", to)
	}
	if err := stmt.Order("paid_at asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
