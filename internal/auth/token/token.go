// Package token signs and verifies the HS256 session tokens stored in the
// auth cookie.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/config"
	"go.uber.org/zap"
)

const (
	issuer     = "clientbase"
	defaultTTL = 24 * time.Hour
)

var (
	ErrInvalid       = errors.New("invalid token")
	ErrExpired       = errors.New("token expired")
	ErrMissingSecret = errors.New("AUTH_JWT_SECRET is required in production")
)

// Claims carried by every session token. Subject holds the user id.
type Claims struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func New(cfg config.Config, clk clock.Clock, log *zap.Logger) (*Issuer, error) {
	secret := []byte(strings.TrimSpace(cfg.AuthJWTSecret))
	if len(secret) == 0 {
		if cfg.IsProduction() {
			return nil, ErrMissingSecret
		}
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		if log != nil {
			log.Warn("AUTH_JWT_SECRET not set, using an ephemeral signing key")
		}
	}
	return NewIssuer(secret, cfg.AuthTokenTTL, clk), nil
}

func NewIssuer(secret []byte, ttl time.Duration, clk clock.Clock) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clk}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Sign returns a token for the user together with its expiry.
func (i *Issuer) Sign(userID, companyID snowflake.ID, role string) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		CompanyID: companyID.String(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *Issuer) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalid
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
