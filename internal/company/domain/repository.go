package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Company, error)
	SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	ListIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
