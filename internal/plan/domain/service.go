package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Interval string  `json:"interval"`
}

type UpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Interval *string  `json:"interval"`
}

type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, req CreateRequest) (*Plan, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Plan, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_plan_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrNotFound        = errors.New("plan_not_found")
	ErrAlreadyExists   = errors.New("plan_exists")
	ErrInUse           = errors.New("plan_in_use")
)
