package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/clientbase/pkg/db/pagination"
)

type ListRequest struct {
	Page     int
	Limit    int
	Status   string
	ClientID string
}

type ListResponse struct {
	Data       []Payment           `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type RecordRequest struct {
	ClientID string   `json:"client_id"`
	Method   string   `json:"method"`
	Amount   *float64 `json:"amount"`
	// Status is PAID when empty. PENDING records a charge that is still owed.
	Status string `json:"status"`
}

type RecordResult struct {
	Payment         Payment `json:"payment"`
	ClientActivated bool    `json:"client_activated"`
}

type Receipt struct {
	Filename string
	Content  []byte
}

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (*Payment, error)
	Record(ctx context.Context, req RecordRequest) (*RecordResult, error)
	MarkOverdue(ctx context.Context, id string) (*Payment, error)
	Receipt(ctx context.Context, id string) (*Receipt, error)
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidMethod      = errors.New("invalid_method")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotFound           = errors.New("payment_not_found")
	ErrNotPending         = errors.New("payment_not_pending")
	ErrInProgress         = errors.New("payment_in_progress")
	ErrReceiptUnavailable = errors.New("receipt_unavailable")
)
