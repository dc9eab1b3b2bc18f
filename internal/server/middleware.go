package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/clientbase/internal/observability/context"
	"github.com/smallbiznis/clientbase/internal/observability/logger"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
	"go.uber.org/zap"
)

const rateLimitReasonAuthRate = "auth-rate"

// AuthRequired resolves the session token into the request's company and
// actor.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		ctx = orgcontext.WithCompanyID(ctx, int64(principal.CompanyID))
		ctx = orgcontext.WithActor(ctx, orgcontext.Actor{
			UserID: principal.UserID,
			Role:   string(principal.Role),
		})
		ctx = obscontext.WithCompanyID(ctx, principal.CompanyID.String())
		ctx = obscontext.WithActor(ctx, principal.UserID.String(), string(principal.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRateLimit throttles unauthenticated auth endpoints per client IP.
func (s *Server) AuthRateLimit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		result, err := s.limiter.AllowAuth(ctx, action, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("auth rate limit check failed",
				zap.String("action", action),
				zap.Error(err),
			)
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if result.Allowed {
			c.Next()
			return
		}

		endpoint := strings.TrimSpace(c.FullPath())
		logger.FromContext(ctx).Warn("auth rate limit exceeded",
			zap.String("reason", rateLimitReasonAuthRate),
			zap.String("endpoint", endpoint),
		)
		s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonAuthRate)

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter.Seconds())))
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		AbortWithError(c, ErrRateLimited)
	}
}

func retryAfterSeconds(seconds float64) int {
	rounded := int(seconds)
	if float64(rounded) < seconds {
		rounded++
	}
	if rounded < 1 {
		return 1
	}
	return rounded
}
