package aggregate

import (
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/dashboard/domain"
)

type statusTally struct {
	total     int
	active    int
	pending   int
	suspended int
	cancelled int
}

func (t *statusTally) add(status clientdomain.Status) {
	switch status {
	case clientdomain.StatusActive:
		t.active++
	case clientdomain.StatusPending:
		t.pending++
	case clientdomain.StatusSuspended:
		t.suspended++
	case clientdomain.StatusCancelled:
		t.cancelled++
	default:
		// unknown statuses are not counted
		return
	}
	t.total++
}

// CountClients tallies clients by status in a single pass.
func CountClients(rows []domain.ClientStatusRow) domain.KPISnapshot {
	var tally statusTally
	for _, row := range rows {
		tally.add(row.Status)
	}
	return domain.KPISnapshot{
		TotalClients:     tally.total,
		ActiveClients:    tally.active,
		PendingClients:   tally.pending,
		SuspendedClients: tally.suspended,
		CancelledClients: tally.cancelled,
	}
}

// SumRevenue adds the amounts of payments that carry a paid timestamp.
func SumRevenue(payments []domain.PaidPayment) (float64, []domain.MalformedRecord) {
	var (
		total     float64
		malformed []domain.MalformedRecord
	)
	for _, p := range payments {
		if p.PaidAt == nil {
			malformed = append(malformed, domain.MalformedRecord{PaymentID: p.ID, Reason: reasonMissingPaidAt})
			continue
		}
		total += p.Amount
	}
	return total, malformed
}

// Snapshot combines the client tally with the revenue of the current month.
func Snapshot(rows []domain.ClientStatusRow, monthPayments []domain.PaidPayment) (domain.KPISnapshot, []domain.MalformedRecord) {
	snapshot := CountClients(rows)
	revenue, malformed := SumRevenue(monthPayments)
	snapshot.MonthlyRevenueTotal = revenue
	return snapshot, malformed
}
