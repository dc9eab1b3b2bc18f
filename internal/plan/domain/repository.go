package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Plan, error)
	FindByName(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name Name) (*Plan, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Plan, error)
	Update(ctx context.Context, db *gorm.DB, plan *Plan) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	CountClients(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
