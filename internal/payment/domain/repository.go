package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status   Status
	ClientID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]Payment, error)
	Count(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter) (int64, error)
	// MarkOverdue flips a PENDING payment to OVERDUE and reports whether a row changed.
	MarkOverdue(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (bool, error)
	// ListPaid returns PAID payments with paid_at in [from, to); a zero to is
	// unbounded. Rows marked PAID without paid_at are included so callers can
	// report them.
	ListPaid(ctx context.Context, db *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]Payment, error)
}
