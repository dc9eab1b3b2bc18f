// Package domain holds the read models behind the dashboard: monthly revenue
// buckets, the trailing series and the client KPI snapshot.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
)

// DefaultWindowMonths is the trailing window size used when none is given.
const DefaultWindowMonths = 6

// PaidPayment is the slice of a payment the revenue math needs. PaidAt is nil
// only for malformed rows.
type PaidPayment struct {
	ID     snowflake.ID
	Amount float64
	PaidAt *time.Time
}

type ClientStatusRow struct {
	Status clientdomain.Status
}

// MonthKey identifies a calendar month in UTC.
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthKeyOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Start is the first instant of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts the key by n months, crossing year boundaries.
func (k MonthKey) AddMonths(n int) MonthKey {
	return MonthKeyOf(k.Start().AddDate(0, n, 0))
}

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Label is the short English month name, for display only.
func (k MonthKey) Label() string {
	return k.Month.String()[:3]
}

type MonthBucket struct {
	Key          MonthKey
	Order        time.Time
	Revenue      float64
	PaymentCount int
}

type SeriesPoint struct {
	MonthLabel   string  `json:"month"`
	Year         int     `json:"year"`
	Month        int     `json:"month_number"`
	Revenue      float64 `json:"revenue"`
	PaymentCount int     `json:"payments"`
}

type KPISnapshot struct {
	TotalClients        int     `json:"total_clients"`
	ActiveClients       int     `json:"active_clients"`
	PendingClients      int     `json:"pending_clients"`
	SuspendedClients    int     `json:"suspended_clients"`
	CancelledClients    int     `json:"cancelled_clients"`
	MonthlyRevenueTotal float64 `json:"monthly_revenue_total"`
}

// MalformedRecord describes a payment that claims PAID but carries no paid
// timestamp. It is skipped by every aggregation.
type MalformedRecord struct {
	PaymentID snowflake.ID
	Reason    string
}
