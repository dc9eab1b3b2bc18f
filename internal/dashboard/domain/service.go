package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetTrailingRevenueSeries(ctx context.Context, companyID snowflake.ID, now time.Time, windowSizeMonths int) ([]SeriesPoint, error)
	GetKPISnapshot(ctx context.Context, companyID snowflake.ID, now time.Time) (KPISnapshot, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidWindow  = errors.New("invalid_window")
)

// UpstreamFetchError wraps a store failure. Nothing is aggregated when it is
// returned.
type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return "dashboard fetch " + e.Op + ": " + e.Err.Error()
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
