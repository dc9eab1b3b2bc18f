package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignAndParse(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	issuer := NewIssuer([]byte("test-secret"), time.Hour, clk)

	raw, expiresAt, err := issuer.Sign(snowflake.ID(10), snowflake.ID(20), "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "10", claims.Subject)
	assert.Equal(t, "20", claims.CompanyID)
	assert.Equal(t, "ADMIN", claims.Role)

	clk.Advance(2 * time.Hour)
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, nil)
	other := NewIssuer([]byte("other-secret"), time.Hour, nil)

	raw, _, err := other.Sign(snowflake.ID(1), snowflake.ID(2), "STAFF")
	require.NoError(t, err)

	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = issuer.Parse("")
	assert.ErrorIs(t, err, ErrInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewRequiresSecretInProduction(t *testing.T) {
	_, err := New(config.Config{Environment: "production"}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingSecret)

	issuer, err := New(config.Config{Environment: "development"}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultTTL, issuer.TTL())
}
