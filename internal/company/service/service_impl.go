package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/clientbase/internal/cache"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/company/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	lookupTTL       = 5 * time.Minute
	maxSlugAttempts = 20
)

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

	byID   cache.Cache[snowflake.ID, domain.Company]
	bySlug cache.Cache[string, domain.Company]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("company.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		byID:   cache.NewTTLCacheWithClock[snowflake.ID, domain.Company](p.Clock),
		bySlug: cache.NewTTLCacheWithClock[string, domain.Company](p.Clock),
	}
}

func (s *Service) Create(ctx context.Context, tx *gorm.DB, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}
	if tx == nil {
		tx = s.db
	}

	companySlug, err := s.uniqueSlug(ctx, tx, name)
	if err != nil {
		return domain.Company{}, err
	}

	settings := datatypes.JSONMap{}
	for k, v := range req.Settings {
		settings[k] = v
	}

	now := s.clock.Now()
	company := domain.Company{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      companySlug,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, tx, &company); err != nil {
		return domain.Company{}, fmt.Errorf("insert company: %w", err)
	}

	s.log.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("slug", company.Slug),
	)
	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	if id == 0 {
		return domain.Company{}, domain.ErrInvalidID
	}
	if cached, ok := s.byID.Get(id); ok {
		return cached, nil
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Company{}, err
	}
	if item == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	s.remember(*item)
	return *item, nil
}

func (s *Service) GetBySlug(ctx context.Context, value string) (domain.Company, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || !slug.IsSlug(value) {
		return domain.Company{}, domain.ErrInvalidSlug
	}
	if cached, ok := s.bySlug.Get(value); ok {
		return cached, nil
	}

	item, err := s.repo.FindBySlug(ctx, s.db, value)
	if err != nil {
		return domain.Company{}, err
	}
	if item == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	s.remember(*item)
	return *item, nil
}

func (s *Service) remember(company domain.Company) {
	s.byID.Set(company.ID, company, lookupTTL)
	s.bySlug.Set(company.Slug, company, lookupTTL)
}

// uniqueSlug derives a slug from name and appends -2, -3, ... on collision.
func (s *Service) uniqueSlug(ctx context.Context, tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", domain.ErrInvalidName
	}

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		exists, err := s.repo.SlugExists(ctx, tx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", domain.ErrInvalidSlug
}
