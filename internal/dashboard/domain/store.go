package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Store is the read side the dashboard fetches from. Implementations filter by
// company and by PAID status; rows without paid_at may still be returned.
type Store interface {
	ListPaidPayments(ctx context.Context, companyID snowflake.ID, since time.Time) ([]PaidPayment, error)
	ListPaidPaymentsInMonth(ctx context.Context, companyID snowflake.ID, monthStart, monthEndExclusive time.Time) ([]PaidPayment, error)
	ListClients(ctx context.Context, companyID snowflake.ID) ([]ClientStatusRow, error)
}
