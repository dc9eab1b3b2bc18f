package aggregate

import (
	"time"

	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
)

// Window returns the n month keys ending at the month of now, oldest first.
func Window(now time.Time, n int) []domain.MonthKey {
	if n <= 0 {
		return []domain.MonthKey{}
	}
	current := domain.MonthKeyOf(now)
	keys := make([]domain.MonthKey, n)
	for i := 0; i < n; i++ {
		keys[i] = current.AddMonths(-(n - 1 - i))
	}
	return keys
}

// Normalize projects buckets onto the trailing window of n months ending at
// now. Months without a bucket are zero and buckets outside the window are
// dropped.
func Normalize(now time.Time, n int, buckets map[domain.MonthKey]domain.MonthBucket) []domain.SeriesPoint {
	keys := Window(now, n)
	series := make([]domain.SeriesPoint, 0, len(keys))
	for _, key := range keys {
		point := domain.SeriesPoint{
			MonthLabel: key.Label(),
			Year:       key.Year,
			Month:      int(key.Month),
		}
		if bucket, ok := buckets[key]; ok {
			point.Revenue = bucket.Revenue
			point.PaymentCount = bucket.PaymentCount
		}
		series = append(series, point)
	}
	return series
}
