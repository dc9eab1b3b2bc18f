package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	Search string
}

type StatusCount struct {
	Status Status
	Count  int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Client, error)
	FindByEmail(ctx context.Context, db *gorm.DB, companyID snowflake.ID, email string) (*Client, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]Client, error)
	ListByStatus(ctx context.Context, db *gorm.DB, companyID snowflake.ID, status Status) ([]Client, error)
	Count(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, from, to Status, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, db *gorm.DB) ([]StatusCount, error)
}
