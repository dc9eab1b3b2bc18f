package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	"github.com/smallbiznis/clientbase/internal/plan/domain"
	"github.com/smallbiznis/clientbase/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedIntervals = map[string]struct{}{
	"monthly":   {},
	"quarterly": {},
	"yearly":    {},
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Plan, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	plans, err := s.repo.List(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	return plans, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Plan, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	planID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.FindByID(ctx, s.db, companyID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Plan, error) {
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	name, err := parseName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	interval, err := parseInterval(req.Interval)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, s.db, companyID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	now := s.clock.Now()
	plan := &domain.Plan{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      name,
		Price:     req.Price,
		Interval:  interval,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	return plan, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := parseName(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != plan.Name {
			existing, err := s.repo.FindByName(ctx, s.db, plan.CompanyID, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, domain.ErrAlreadyExists
			}
		}
		plan.Name = name
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		plan.Price = *req.Price
	}
	if req.Interval != nil {
		interval, err := parseInterval(*req.Interval)
		if err != nil {
			return nil, err
		}
		plan.Interval = interval
	}

	plan.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return plan, nil
}

// Delete removes a plan that no client is subscribed to.
func (s *Service) Delete(ctx context.Context, id string) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inUse, err := s.repo.CountClients(ctx, tx, plan.CompanyID, plan.ID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, plan.CompanyID, plan.ID)
	})
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseName accepts plan names case-insensitively and returns the canonical form.
func parseName(value string) (domain.Name, error) {
	value = strings.TrimSpace(value)
	for _, candidate := range []domain.Name{domain.NameBasic, domain.NamePro, domain.NamePremium} {
		if strings.EqualFold(value, string(candidate)) {
			return candidate, nil
		}
	}
	return "", domain.ErrInvalidName
}

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.ErrInvalidPrice
	}
	return nil
}

func parseInterval(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return domain.DefaultInterval, nil
	}
	if _, ok := allowedIntervals[value]; !ok {
		return "", domain.ErrInvalidInterval
	}
	return value, nil
}
