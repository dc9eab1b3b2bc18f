package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	limiter, err := NewLimiter(lc, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	ctx := context.Background()
	res, err := limiter.AllowAuth(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.LockPaymentClient(ctx, "1", "2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, limiter.UnlockPaymentClient(ctx, "1", "2", token))
}

func TestNewLimiterValidatesSettings(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	_, err := newLimiter(client, config.RateLimitConfig{AuthRate: 0, AuthBurst: 5, PaymentLockTTLSeconds: 10})
	assert.Error(t, err)

	_, err = newLimiter(client, config.RateLimitConfig{AuthRate: 1, AuthBurst: 5})
	assert.Error(t, err)

	limiter, err := newLimiter(client, config.RateLimitConfig{AuthRate: 1, AuthBurst: 5, PaymentLockTTLSeconds: 10})
	require.NoError(t, err)
	assert.True(t, limiter.Enabled())
	assert.Equal(t, 10*time.Second, limiter.lockTTL)
}

func TestLockerRejectsInvalidInput(t *testing.T) {
	var nilLocker *Locker
	_, _, err := nilLocker.TryLock(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotConfigured)
	assert.NoError(t, nilLocker.Release(context.Background(), "k", "t"))

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewLocker(client)

	_, _, err = locker.TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrLockKeyEmpty)
	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrLockTTL)
}

func TestBucketHelpers(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBucketTTL(1, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))

	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 3.0, castToFloat(int64(3)))
	assert.Equal(t, 0.0, castToFloat("nope"))
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(0), castToInt(nil))
}

func TestPaymentLockKey(t *testing.T) {
	assert.Equal(t, "clientbase:payment:lock:1:2", paymentLockKey(" 1", "2 "))
}
