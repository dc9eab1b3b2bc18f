package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/clientbase/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyAuthAttempt = "clientbase:auth:%s:%s"
	keyPaymentLock = "clientbase:payment:lock:%s:%s"
)

// Limiter throttles credential endpoints and serializes payment recording per
// client. A nil Limiter allows everything.
type Limiter struct {
	client redis.UniversalClient
	bucket *TokenBucket
	locker *Locker

	authRate  float64
	authBurst int
	lockTTL   time.Duration
}

func NewLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*Limiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	limiter, err := newLimiter(client, limitCfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	log = log.Named("ratelimit")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable at startup", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return limiter, nil
}

func newLimiter(client redis.UniversalClient, cfg config.RateLimitConfig) (*Limiter, error) {
	if cfg.AuthRate <= 0 || cfg.AuthBurst <= 0 {
		return nil, errors.New("auth rate limit must be positive")
	}
	if cfg.PaymentLockTTLSeconds <= 0 {
		return nil, errors.New("payment lock ttl must be positive")
	}
	return &Limiter{
		client:    client,
		bucket:    NewTokenBucket(client),
		locker:    NewLocker(client),
		authRate:  cfg.AuthRate,
		authBurst: cfg.AuthBurst,
		lockTTL:   time.Duration(cfg.PaymentLockTTLSeconds) * time.Second,
	}, nil
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil
}

// AllowAuth spends one token from the bucket of the given action and caller.
func (l *Limiter) AllowAuth(ctx context.Context, action, remoteIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyAuthAttempt, strings.TrimSpace(action), strings.TrimSpace(remoteIP))
	return l.bucket.Allow(ctx, key, l.authRate, l.authBurst)
}

// LockPaymentClient acquires the per-client payment lock. When disabled it
// always succeeds with an empty token.
func (l *Limiter) LockPaymentClient(ctx context.Context, companyID, clientID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, paymentLockKey(companyID, clientID), l.lockTTL)
}

func (l *Limiter) UnlockPaymentClient(ctx context.Context, companyID, clientID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, paymentLockKey(companyID, clientID), token)
}

func paymentLockKey(companyID, clientID string) string {
	return fmt.Sprintf(keyPaymentLock, strings.TrimSpace(companyID), strings.TrimSpace(clientID))
}
