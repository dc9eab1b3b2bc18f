package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/clientbase/internal/auth/domain"
	"github.com/smallbiznis/clientbase/internal/authorization"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	companydomain "github.com/smallbiznis/clientbase/internal/company/domain"
	dashboarddomain "github.com/smallbiznis/clientbase/internal/dashboard/domain"
	paymentdomain "github.com/smallbiznis/clientbase/internal/payment/domain"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

var validationErrors = []error{
	ErrInvalidRequest,
	authdomain.ErrInvalidEmail,
	authdomain.ErrInvalidPassword,
	authdomain.ErrInvalidName,
	authdomain.ErrInvalidRole,
	companydomain.ErrInvalidName,
	companydomain.ErrInvalidSlug,
	companydomain.ErrInvalidID,
	clientdomain.ErrInvalidCompany,
	clientdomain.ErrInvalidID,
	clientdomain.ErrInvalidName,
	clientdomain.ErrInvalidEmail,
	clientdomain.ErrInvalidPhone,
	clientdomain.ErrInvalidPlan,
	clientdomain.ErrInvalidStatus,
	plandomain.ErrInvalidCompany,
	plandomain.ErrInvalidID,
	plandomain.ErrInvalidName,
	plandomain.ErrInvalidPrice,
	plandomain.ErrInvalidInterval,
	paymentdomain.ErrInvalidCompany,
	paymentdomain.ErrInvalidID,
	paymentdomain.ErrInvalidClient,
	paymentdomain.ErrInvalidMethod,
	paymentdomain.ErrInvalidAmount,
	paymentdomain.ErrInvalidStatus,
	dashboarddomain.ErrInvalidCompany,
	dashboarddomain.ErrInvalidWindow,
}

var unauthorizedErrors = []error{
	ErrUnauthorized,
	authdomain.ErrInvalidCredentials,
	authdomain.ErrInvalidToken,
	authdomain.ErrTokenExpired,
	authdomain.ErrUserNotFound,
	authorization.ErrInvalidActor,
	authorization.ErrInvalidCompany,
}

var conflictErrors = []error{
	ErrConflict,
	authdomain.ErrUserExists,
	clientdomain.ErrEmailTaken,
	plandomain.ErrAlreadyExists,
	plandomain.ErrInUse,
	paymentdomain.ErrNotPending,
	paymentdomain.ErrInProgress,
	paymentdomain.ErrReceiptUnavailable,
}

var notFoundErrors = []error{
	ErrNotFound,
	companydomain.ErrNotFound,
	clientdomain.ErrNotFound,
	plandomain.ErrNotFound,
	paymentdomain.ErrNotFound,
	gorm.ErrRecordNotFound,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if target := matchAny(err, validationErrors); target != nil {
		code := target.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	var upstream *dashboarddomain.UpstreamFetchError
	switch {
	case matchAny(err, unauthorizedErrors) != nil:
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case matchAny(err, conflictErrors) != nil:
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: matchAny(err, conflictErrors).Error(),
		}
	case matchAny(err, notFoundErrors) != nil:
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.As(err, &upstream):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "upstream_unavailable",
			Message: "data source unavailable",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger with the same type and code
// the client receives.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if payload.Type == "conflict" {
		return payload.Type, payload.Message
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func matchAny(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_password":
		return "password must be at least 8 characters"
	case "invalid_window":
		return "window must be a positive number of months"
	default:
		return "invalid value"
	}
}
