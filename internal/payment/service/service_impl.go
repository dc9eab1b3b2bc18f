package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/clock"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/smallbiznis/clientbase/internal/observability/metrics"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	"github.com/smallbiznis/clientbase/internal/payment/domain"
	"github.com/smallbiznis/clientbase/internal/payment/receipt"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"github.com/smallbiznis/clientbase/internal/ratelimit"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	PlanRepo   plandomain.Repository
	Companies  companydomain.Service
	Dashboard  *config.DashboardConfigHolder `optional:"true"`
	Limiter    *ratelimit.Limiter            `optional:"true"`
	Metrics    *metrics.Metrics              `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
	planRepo   plandomain.Repository
	companies  companydomain.Service
	dashboard  *config.DashboardConfigHolder
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
		planRepo:   p.PlanRepo,
		companies:  p.Companies,
		dashboard:  p.Dashboard,
		limiter:    p.Limiter,
		metrics:    p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListResponse{}, domain.ErrInvalidCompany
	}

	var filter domain.ListFilter
	if value := strings.TrimSpace(req.Status); value != "" {
		status, err := parseStatus(value)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Status = status
	}
	if value := strings.TrimSpace(req.ClientID); value != "" {
		clientID, err := snowflake.ParseString(value)
		if err != nil || clientID == 0 {
			return domain.ListResponse{}, domain.ErrInvalidClient
		}
		filter.ClientID = clientID
	}

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	total, err := s.repo.Count(ctx, s.db, companyID, filter)
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("count payments: %w", err)
	}
	items, err := s.repo.List(ctx, s.db, companyID, filter, page)
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("list payments: %w", err)
	}
	if items == nil {
		items = []domain.Payment{}
	}

	return domain.ListResponse{
		Data:       items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Payment, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, companyID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

// Record stores a payment for a client. A PAID payment on a PENDING client
// activates the client in the same transaction.
func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.RecordResult, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return nil, domain.ErrInvalidClient
	}
	method := domain.Method(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		return nil, domain.ErrInvalidMethod
	}
	status := domain.StatusPaid
	if value := strings.TrimSpace(req.Status); value != "" {
		status, err = parseStatus(value)
		if err != nil {
			return nil, err
		}
		if status == domain.StatusOverdue {
			return nil, domain.ErrInvalidStatus
		}
	}
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
	}

	lockToken, acquired, err := s.limiter.LockPaymentClient(ctx, companyID.String(), clientID.String())
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrInProgress
	}
	defer func() {
		if err := s.limiter.UnlockPaymentClient(ctx, companyID.String(), clientID.String(), lockToken); err != nil {
			s.log.Warn("release payment lock failed", zap.Error(err))
		}
	}()

	now := s.clock.Now().UTC()
	result := &domain.RecordResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.clientRepo.FindByID(ctx, tx, companyID, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return clientdomain.ErrNotFound
		}

		var amount float64
		if req.Amount != nil {
			amount = *req.Amount
		} else {
			plan, err := s.planRepo.FindByID(ctx, tx, companyID, client.PlanID)
			if err != nil {
				return err
			}
			if plan == nil {
				return plandomain.ErrNotFound
			}
			amount = plan.Price
		}

		payment := domain.Payment{
			ID:        s.genID.Generate(),
			CompanyID: companyID,
			ClientID:  client.ID,
			Amount:    amount,
			Status:    status,
			Method:    method,
			Reference: ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			CreatedAt: now,
		}
		if status == domain.StatusPaid {
			paidAt := now
			payment.PaidAt = &paidAt
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		result.Payment = payment

		if status != domain.StatusPaid || client.Status != clientdomain.StatusPending {
			return nil
		}
		activated, err := s.clientRepo.UpdateStatus(ctx, tx, companyID, client.ID, clientdomain.StatusPending, clientdomain.StatusActive, now)
		if err != nil {
			return fmt.Errorf("activate client: %w", err)
		}
		result.ClientActivated = activated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == domain.StatusPaid {
		s.metrics.RecordPaymentRecorded(ctx, companyID.String())
	}
	s.log.Info("payment recorded",
		zap.String("company_id", companyID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("status", string(status)),
		zap.Bool("client_activated", result.ClientActivated),
	)
	return result, nil
}

// MarkOverdue moves a PENDING payment to OVERDUE.
func (s *Service) MarkOverdue(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.StatusPending {
		return nil, domain.ErrNotPending
	}

	changed, err := s.repo.MarkOverdue(ctx, s.db, payment.CompanyID, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("mark payment overdue: %w", err)
	}
	if !changed {
		return nil, domain.ErrNotPending
	}
	payment.Status = domain.StatusOverdue
	return payment, nil
}

func (s *Service) Receipt(ctx context.Context, id string) (*domain.Receipt, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.StatusPaid || payment.PaidAt == nil {
		return nil, domain.ErrReceiptUnavailable
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, payment.CompanyID, payment.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, clientdomain.ErrNotFound
	}
	company, err := s.companies.GetByID(ctx, payment.CompanyID)
	if err != nil {
		return nil, err
	}

	data := receipt.Data{
		CompanyName: company.Name,
		Reference:   payment.Reference,
		DatePaid:    payment.PaidAt.UTC().Format("2006-01-02"),
		Method:      string(payment.Method),
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Amount:      payment.Amount,
		Currency:    s.dashboard.Get().Currency,
	}
	plan, err := s.planRepo.FindByID(ctx, s.db, payment.CompanyID, client.PlanID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		data.PlanName = string(plan.Name)
		data.PlanInterval = plan.Interval
	}

	content, err := receipt.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return &domain.Receipt{
		Filename: "receipt-" + payment.Reference + ".pdf",
		Content:  content,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseStatus(value string) (domain.Status, error) {
	status := domain.Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", domain.ErrInvalidStatus
	}
	return status, nil
}

func validateAmount(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.ErrInvalidAmount
	}
	return nil
}
