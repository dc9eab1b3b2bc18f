package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
	paymentdomain "github.com/smallbiznis/clientbase/internal/payment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Payments paymentdomain.Repository
}

type store struct {
	db       *gorm.DB
	payments paymentdomain.Repository
}

func NewStore(p Params) domain.Store {
	return &store{db: p.DB, payments: p.Payments}
}

func (s *store) ListPaidPayments(ctx context.Context, companyID snowflake.ID, since time.Time) ([]domain.PaidPayment, error) {
	rows, err := s.payments.ListPaid(ctx, s.db, companyID, since.UTC(), time.Time{})
	if err != nil {
		return nil, err
	}
	return toPaidPayments(rows), nil
}

func (s *store) ListPaidPaymentsInMonth(ctx context.Context, companyID snowflake.ID, monthStart, monthEndExclusive time.Time) ([]domain.PaidPayment, error) {
	rows, err := s.payments.ListPaid(ctx, s.db, companyID, monthStart.UTC(), monthEndExclusive.UTC())
	if err != nil {
		return nil, err
	}
	return toPaidPayments(rows), nil
}

func (s *store) ListClients(ctx context.Context, companyID snowflake.ID) ([]domain.ClientStatusRow, error) {
	var statuses []clientdomain.Status
	err := s.db.WithContext(ctx).
		Model(&clientdomain.Client{}).
		Where("company_id = ?", companyID).
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ClientStatusRow, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, domain.ClientStatusRow{Status: status})
	}
	return rows, nil
}

func toPaidPayments(rows []paymentdomain.Payment) []domain.PaidPayment {
	out := make([]domain.PaidPayment, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PaidPayment{
			ID:     row.ID,
			Amount: row.Amount,
			PaidAt: row.PaidAt,
		})
	}
	return out
}
