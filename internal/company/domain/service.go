package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateCompanyRequest struct {
	Name     string
	Settings map[string]any
}

type Service interface {
	// Create inserts the company using tx when it is non-nil so callers can
	// provision it together with its first user.
	Create(ctx context.Context, tx *gorm.DB, req CreateCompanyRequest) (Company, error)
	GetByID(ctx context.Context, id snowflake.ID) (Company, error)
	GetBySlug(ctx context.Context, slug string) (Company, error)
}

var (
	ErrInvalidName = errors.New("invalid_company_name")
	ErrInvalidSlug = errors.New("invalid_slug")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("company_not_found")
)
