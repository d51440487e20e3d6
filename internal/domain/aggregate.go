package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/util"
)

// Period is a date window, inclusive on both ends.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// SumByCategory groups transactions by category and sums their points. With
// a period only transactions dated inside it count; with nil all count.
// Legacy categories no longer in the enum keep their own key rather than
// silently disappearing.
func SumByCategory(transactions []*PointTransaction, period *Period) map[Category]decimal.Decimal {
	sums := make(map[Category]decimal.Decimal)
	for _, tx := range transactions {
		if period != nil && !period.Contains(tx.Date) {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Points)
	}
	return sums
}

// MonthTotals holds one calendar month of the trend view.
type MonthTotals struct {
	Month      string                       `json:"month"` // YYYY-MM
	ByCategory map[Category]decimal.Decimal `json:"byCategory"`
	Total      decimal.Decimal              `json:"total"`
}

// SumByMonth groups transactions into per-month category totals, sorted
// ascending by month.
func SumByMonth(transactions []*PointTransaction) []MonthTotals {
	byMonth := make(map[string]*MonthTotals)
	for _, tx := range transactions {
		key := util.MonthKey(tx.Date)
		totals, ok := byMonth[key]
		if !ok {
			totals = &MonthTotals{Month: key, ByCategory: make(map[Category]decimal.Decimal)}
			byMonth[key] = totals
		}
		totals.ByCategory[tx.Category] = totals.ByCategory[tx.Category].Add(tx.Points)
		totals.Total = totals.Total.Add(tx.Points)
	}

	result := make([]MonthTotals, 0, len(byMonth))
	for _, totals := range byMonth {
		result = append(result, *totals)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}
