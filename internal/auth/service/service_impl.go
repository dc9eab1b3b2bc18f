package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clientbase/internal/auth/domain"
	"github.com/smallbiznis/clientbase/internal/auth/password"
	"github.com/smallbiznis/clientbase/internal/auth/token"
	"github.com/smallbiznis/clientbase/internal/clock"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	"github.com/smallbiznis/clientbase/internal/observability/metrics"
	"github.com/smallbiznis/clientbase/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Companies companydomain.Service
	Tokens    *token.Issuer
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	companies companydomain.Service
	tokens    *token.Issuer
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("auth.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		companies: p.Companies,
		tokens:    p.Tokens,
		metrics:   p.Metrics,
	}
}

// Register provisions a company together with its first ADMIN user.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, companydomain.ErrInvalidName
	}

	var (
		user    *domain.User
		company companydomain.Company
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		company, err = s.companies.Create(ctx, tx, companydomain.CreateCompanyRequest{Name: req.CompanyName})
		if err != nil {
			return err
		}
		user, err = s.CreateUser(ctx, tx, domain.CreateUserRequest{
			CompanyID: company.ID,
			Name:      req.Name,
			Email:     req.Email,
			Password:  req.Password,
			Role:      domain.RoleAdmin,
		})
		return err
	})
	if err != nil {
		s.metrics.RecordAuthAttempt(ctx, "register", "failure")
		return nil, err
	}

	result, err := s.issue(*user, company)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAuthAttempt(ctx, "register", "success")
	s.log.Info("company registered",
		zap.String("company_id", company.ID.String()),
		zap.String("user_id", user.ID.String()),
	)
	return result, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		s.metrics.RecordAuthAttempt(ctx, "login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		s.metrics.RecordAuthAttempt(ctx, "login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}

	result, err := s.issue(*user, company)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAuthAttempt(ctx, "login", "success")
	return result, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil || userID == 0 {
		return nil, domain.ErrInvalidToken
	}
	companyID, err := snowflake.ParseString(claims.CompanyID)
	if err != nil || companyID == 0 {
		return nil, domain.ErrInvalidToken
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{UserID: userID, CompanyID: companyID, Role: role}, nil
}

func (s *Service) Me(ctx context.Context, userID snowflake.ID) (*domain.Profile, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{User: *user, Company: company}, nil
}

func (s *Service) CreateUser(ctx context.Context, tx *gorm.DB, req domain.CreateUserRequest) (*domain.User, error) {
	if tx == nil {
		tx = s.db
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if req.CompanyID == 0 {
		return nil, companydomain.ErrInvalidID
	}

	existing, err := s.repo.FindByEmail(ctx, tx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, domain.ErrInvalidPassword
		}
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		CompanyID:    req.CompanyID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, tx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user domain.User, company companydomain.Company) (*domain.AuthResult, error) {
	signed, expiresAt, err := s.tokens.Sign(user.ID, company.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		User:      user,
		Company:   company,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func normalizeEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", domain.ErrInvalidEmail
	}
	return value, nil
}
