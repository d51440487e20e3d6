package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the derived view of a membership's current period.
// RemainingPoints may be negative (over-booking); it is never clamped here
// so the audit trail stays exact. Callers clamp for display.
type BalanceSnapshot struct {
	UsedPoints         decimal.Decimal `json:"usedPoints"`
	RemainingPoints    decimal.Decimal `json:"remainingPoints"`
	CarryOverPoints    decimal.Decimal `json:"carryOverPoints"`
	UtilizationPercent int32           `json:"utilizationPercent"`
}

// CalculateBalance derives the balance snapshot for the membership's current
// billing window from the transaction log. It is a pure function: identical
// inputs always produce identical output.
func CalculateBalance(membership *Membership, transactions []*PointTransaction) BalanceSnapshot {
	used := UsedPoints(membership.PeriodStart, membership.PeriodEnd, transactions)
	carry := membership.CarryOverTotal()
	remaining := membership.MonthlyPoints.Add(membership.BonusPoints).Add(carry).Sub(used)

	return BalanceSnapshot{
		UsedPoints:         used,
		RemainingPoints:    remaining,
		CarryOverPoints:    carry,
		UtilizationPercent: utilizationPercent(used, membership.MonthlyPoints),
	}
}

// UsedPoints sums the points of all transactions dated within [start, end].
func UsedPoints(start, end time.Time, transactions []*PointTransaction) decimal.Decimal {
	used := decimal.Zero
	for _, tx := range transactions {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		used = used.Add(tx.Points)
	}
	return used
}

func utilizationPercent(used, monthlyPoints decimal.Decimal) int32 {
	if monthlyPoints.IsZero() {
		return 0
	}
	percent := used.Div(monthlyPoints).Mul(decimal.NewFromInt(100)).Round(0)
	return int32(percent.IntPart())
}

// DisplayUtilization clamps the utilization to 0..100 for presentation. The
// unclamped value stays available for auditing.
func (b BalanceSnapshot) DisplayUtilization() int32 {
	switch {
	case b.UtilizationPercent < 0:
		return 0
	case b.UtilizationPercent > 100:
		return 100
	}
	return b.UtilizationPercent
}
