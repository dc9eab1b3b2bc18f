package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/clientbase/internal/dashboard/domain"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
)

func (s *Server) RevenueSeries(c *gin.Context) {
	companyID, ok := orgcontext.CompanyIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	cfg := s.dashboardCfg.Get()
	window := cfg.RevenueWindowMonths
	if raw := strings.TrimSpace(c.Query("window")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, dashboarddomain.ErrInvalidWindow)
			return
		}
		window = parsed
	}
	if window > cfg.MaxWindowMonths {
		AbortWithError(c, newValidationError("window", "window_too_large", "window exceeds "+strconv.Itoa(cfg.MaxWindowMonths)+" months"))
		return
	}

	series, err := s.dashboardSvc.GetTrailingRevenueSeries(c.Request.Context(), companyID, s.clock.Now(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     series,
		"window":   window,
		"currency": cfg.Currency,
	})
}

func (s *Server) KPISnapshot(c *gin.Context) {
	companyID, ok := orgcontext.CompanyIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	snapshot, err := s.dashboardSvc.GetKPISnapshot(c.Request.Context(), companyID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     snapshot,
		"currency": s.dashboardCfg.Get().Currency,
	})
}
