package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	"gorm.io/gorm"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	Me(ctx context.Context, userID snowflake.ID) (*Profile, error)
	// CreateUser adds a member to an existing company; tx may be nil.
	CreateUser(ctx context.Context, tx *gorm.DB, req CreateUserRequest) (*User, error)
}

type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
}

type LoginRequest struct {
	Email    string
	Password string
}

type CreateUserRequest struct {
	CompanyID snowflake.ID
	Name      string
	Email     string
	Password  string
	Role      Role
}

type AuthResult struct {
	User      User
	Company   companydomain.Company
	Token     string
	ExpiresAt time.Time
}
