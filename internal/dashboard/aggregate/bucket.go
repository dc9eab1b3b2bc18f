// Package aggregate is the pure compute stage of the dashboard. Nothing here
// does I/O or reads the wall clock.
package aggregate

import (
	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
)

const reasonMissingPaidAt = "paid payment without paid_at"

// Bucket groups payments by the UTC calendar month of PaidAt. Payments without
// PaidAt are skipped and returned as malformed. No lower bound is applied.
func Bucket(payments []domain.PaidPayment) (map[domain.MonthKey]domain.MonthBucket, []domain.MalformedRecord) {
	buckets := make(map[domain.MonthKey]domain.MonthBucket)
	var malformed []domain.MalformedRecord

	for _, p := range payments {
		if p.PaidAt == nil {
			malformed = append(malformed, domain.MalformedRecord{PaymentID: p.ID, Reason: reasonMissingPaidAt})
			continue
		}

		key := domain.MonthKeyOf(*p.PaidAt)
		bucket, ok := buckets[key]
		if !ok {
			bucket = domain.MonthBucket{Key: key, Order: key.Start()}
		}
		bucket.Revenue += p.Amount
		bucket.PaymentCount++
		buckets[key] = bucket
	}

	return buckets, malformed
}
