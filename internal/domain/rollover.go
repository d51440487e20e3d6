package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/util"
)

// RollPeriod closes the membership's current billing window given the net
// points used in it, and opens the next one:
//
//  1. Consumption is attributed oldest-first: carry-over buckets drain
//     before the monthly allowance, oldest bucket first.
//  2. Every surviving bucket ages by one period; a bucket that has completed
//     its third period expires with whatever value it still holds.
//  3. The unconsumed part of the monthly + bonus allowance becomes the new
//     newest bucket (zero if the period was fully used or over-booked; an
//     over-booked deficit is forgiven, not carried forward).
//  4. The window advances by one calendar month.
//
// The caller is responsible for serialization and persistence.
func RollPeriod(membership *Membership, used decimal.Decimal) {
	remaining := used
	for i := len(membership.CarryOver) - 1; i >= 0; i-- {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		bucket := &membership.CarryOver[i]
		take := decimal.Min(bucket.Points, remaining)
		bucket.Points = bucket.Points.Sub(take)
		remaining = remaining.Sub(take)
	}

	leftover := membership.MonthlyPoints.Add(membership.BonusPoints).Sub(remaining)
	if leftover.IsNegative() {
		leftover = decimal.Zero
	}

	aged := make([]CarryBucket, 0, CarryOverLifetimePeriods)
	aged = append(aged, CarryBucket{Points: leftover, Age: 1})
	for _, bucket := range membership.CarryOver {
		if bucket.Age+1 > CarryOverLifetimePeriods {
			continue // completed its third period, value discarded
		}
		aged = append(aged, CarryBucket{Points: bucket.Points, Age: bucket.Age + 1})
	}
	membership.CarryOver = aged

	membership.PeriodStart = membership.PeriodEnd.AddDate(0, 0, 1)
	membership.PeriodEnd = util.PeriodEndFor(membership.PeriodStart)
}

// RollDue reports whether the membership's period end lies before asOf
// (date precision). Rolls still occur after contract end so history stays
// correct; only new bookings are rejected there.
func RollDue(membership *Membership, asOf time.Time) bool {
	return util.DateOnly(asOf).After(util.DateOnly(membership.PeriodEnd))
}
