package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	PlanRepo plandomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	planRepo plandomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("client.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListFilter{Search: strings.TrimSpace(req.Search)}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := parseStatus(status)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Status = parsed
	}

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	total, err := s.repo.Count(ctx, s.db, companyID, filter)
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("count clients: %w", err)
	}
	items, err := s.repo.List(ctx, s.db, companyID, filter, page)
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("list clients: %w", err)
	}

	views, err := s.withPlans(ctx, companyID, items)
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		Data:       views,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ClientView, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	clientID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	views, err := s.withPlans(ctx, companyID, []domain.Client{*item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ClientView, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	plan, err := s.resolvePlan(ctx, companyID, req.PlanID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, companyID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		PlanID:    plan.ID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Status:    domain.StatusPending,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}

	s.log.Info("client created",
		zap.String("company_id", companyID.String()),
		zap.String("client_id", client.ID.String()),
	)
	return &domain.ClientView{Client: client, Plan: plan}, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.ClientView, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	clientID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if email != client.Email {
			existing, err := s.repo.FindByEmail(ctx, s.db, companyID, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, domain.ErrEmailTaken
			}
		}
		client.Email = email
	}
	if req.Phone != nil {
		phone, err := normalizePhone(req.Phone)
		if err != nil {
			return nil, err
		}
		client.Phone = phone
	}
	var plan *plandomain.Plan
	if req.PlanID != nil {
		plan, err = s.resolvePlan(ctx, companyID, *req.PlanID)
		if err != nil {
			return nil, err
		}
		client.PlanID = plan.ID
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		client.Status = status
	}

	client.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	if plan != nil {
		return &domain.ClientView{Client: *client, Plan: plan}, nil
	}
	views, err := s.withPlans(ctx, companyID, []domain.Client{*client})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) ListPendingPayment(ctx context.Context) ([]domain.ClientView, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	items, err := s.repo.ListByStatus(ctx, s.db, companyID, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending clients: %w", err)
	}
	return s.withPlans(ctx, companyID, items)
}

// withPlans attaches each client's plan using a single plan lookup per company.
func (s *Service) withPlans(ctx context.Context, companyID snowflake.ID, clients []domain.Client) ([]domain.ClientView, error) {
	views := make([]domain.ClientView, 0, len(clients))
	if len(clients) == 0 {
		return views, nil
	}

	plans, err := s.planRepo.List(ctx, s.db, companyID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	byID := make(map[snowflake.ID]plandomain.Plan, len(plans))
	for _, plan := range plans {
		byID[plan.ID] = plan
	}

	for _, client := range clients {
		view := domain.ClientView{Client: client}
		if plan, ok := byID[client.PlanID]; ok {
			view.Plan = &plan
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) resolvePlan(ctx context.Context, companyID snowflake.ID, value string) (*plandomain.Plan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || planID == 0 {
		return nil, domain.ErrInvalidPlan
	}
	plan, err := s.planRepo.FindByID(ctx, s.db, companyID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrInvalidPlan
	}
	return plan, nil
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

func normalizeEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	addr, err := mail.ParseAddress(value)
	if value == "" || err != nil || addr.Address != value {
		return "", domain.ErrInvalidEmail
	}
	return value, nil
}

func normalizePhone(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	phone := strings.TrimSpace(*value)
	if phone == "" {
		return nil, nil
	}
	for _, r := range phone {
		if !strings.ContainsRune("+0123456789 -()", r) {
			return nil, domain.ErrInvalidPhone
		}
	}
	return &phone, nil
}
