package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/clientbase/pkg/db/pagination"
)

type ListRequest struct {
	Page   int
	Limit  int
	Status string
	Search string
}

type ListResponse struct {
	Data       []ClientView        `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type CreateRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    *string        `json:"phone"`
	PlanID   string         `json:"plan_id"`
	Metadata map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	PlanID *string `json:"plan_id"`
	Status *string `json:"status"`
}

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (*ClientView, error)
	Create(ctx context.Context, req CreateRequest) (*ClientView, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ClientView, error)
	// ListPendingPayment returns clients still waiting on their first payment.
	ListPendingPayment(ctx context.Context) ([]ClientView, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrInvalidPlan    = errors.New("invalid_plan")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrEmailTaken     = errors.New("client_email_taken")
	ErrNotFound       = errors.New("client_not_found")
)
