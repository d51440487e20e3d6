package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func rollableMembership() *Membership {
	return &Membership{
		ID:            1,
		CustomerID:    1,
		Tier:          TierS,
		MonthlyPoints: decimal.NewFromInt(100),
		BonusPoints:   decimal.Zero,
		PeriodStart:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestRollPeriod_FullLeftoverBecomesNewestBucket(t *testing.T) {
	m := rollableMembership()

	RollPeriod(m, decimal.Zero)

	if len(m.CarryOver) != 1 {
		t.Fatalf("Expected 1 bucket, got %d", len(m.CarryOver))
	}
	if !m.CarryOver[0].Points.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected newest bucket 100, got %s", m.CarryOver[0].Points)
	}
	if m.CarryOver[0].Age != 1 {
		t.Errorf("Expected age 1, got %d", m.CarryOver[0].Age)
	}
}

func TestRollPeriod_ZeroLeftoverProducesZeroBucket(t *testing.T) {
	m := rollableMembership()

	RollPeriod(m, decimal.NewFromInt(100))

	if len(m.CarryOver) != 1 {
		t.Fatalf("Expected 1 bucket, got %d", len(m.CarryOver))
	}
	if !m.CarryOver[0].Points.IsZero() {
		t.Errorf("Expected newest bucket 0, got %s", m.CarryOver[0].Points)
	}
}

func TestRollPeriod_AdvancesWindowByOneCalendarMonth(t *testing.T) {
	m := rollableMembership()

	RollPeriod(m, decimal.Zero)

	wantStart := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	if !m.PeriodStart.Equal(wantStart) {
		t.Errorf("Expected period start %s, got %s", wantStart, m.PeriodStart)
	}
	if !m.PeriodEnd.Equal(wantEnd) {
		t.Errorf("Expected period end %s, got %s", wantEnd, m.PeriodEnd)
	}
}

func TestRollPeriod_ConsumesOldestBucketFirst(t *testing.T) {
	m := rollableMembership()
	m.CarryOver = []CarryBucket{
		{Points: decimal.NewFromInt(50), Age: 1},
		{Points: decimal.NewFromInt(30), Age: 2},
	}

	// 40 used: drains the age-2 bucket (30) and 10 of the age-1 bucket,
	// leaving the full monthly allowance as leftover.
	RollPeriod(m, decimal.NewFromInt(40))

	if len(m.CarryOver) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(m.CarryOver))
	}
	if !m.CarryOver[0].Points.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected newest bucket 100, got %s", m.CarryOver[0].Points)
	}
	if !m.CarryOver[1].Points.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected shifted bucket 40, got %s", m.CarryOver[1].Points)
	}
	if !m.CarryOver[2].Points.IsZero() {
		t.Errorf("Expected drained oldest bucket 0, got %s", m.CarryOver[2].Points)
	}
}

func TestRollPeriod_FourthRollExpiresOldestBucket(t *testing.T) {
	m := rollableMembership()

	for i := 0; i < 4; i++ {
		RollPeriod(m, decimal.Zero)
		if len(m.CarryOver) > CarryOverLifetimePeriods {
			t.Fatalf("Roll %d produced %d buckets", i+1, len(m.CarryOver))
		}
	}

	// Steady state with zero usage: three full buckets, the fourth expired.
	if len(m.CarryOver) != 3 {
		t.Fatalf("Expected 3 buckets after 4 rolls, got %d", len(m.CarryOver))
	}
	for i, bucket := range m.CarryOver {
		if !bucket.Points.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Bucket %d: expected 100 points, got %s", i, bucket.Points)
		}
		if bucket.Age != int32(i+1) {
			t.Errorf("Bucket %d: expected age %d, got %d", i, i+1, bucket.Age)
		}
	}
}

func TestRollPeriod_OverBookingForgiven(t *testing.T) {
	m := rollableMembership()

	RollPeriod(m, decimal.NewFromInt(140))

	if !m.CarryOver[0].Points.IsZero() {
		t.Errorf("Expected zero leftover after over-booking, got %s", m.CarryOver[0].Points)
	}
	// The deficit does not reduce the new period's budget.
	if !m.BudgetTotal().Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected budget 100 in new period, got %s", m.BudgetTotal())
	}
}

func TestRollPeriod_CreditRollsOver(t *testing.T) {
	m := rollableMembership()

	// Net credit in the closing period inflates the leftover.
	RollPeriod(m, decimal.NewFromInt(-20))

	if !m.CarryOver[0].Points.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected leftover 120, got %s", m.CarryOver[0].Points)
	}
}

func TestRollPeriod_BonusCountsTowardLeftover(t *testing.T) {
	m := rollableMembership()
	m.BonusPoints = decimal.NewFromInt(25)

	RollPeriod(m, decimal.NewFromInt(50))

	if !m.CarryOver[0].Points.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected leftover 75, got %s", m.CarryOver[0].Points)
	}
}

func TestRollPeriod_ShortMonthClamped(t *testing.T) {
	m := rollableMembership()
	m.PeriodStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.PeriodEnd = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	RollPeriod(m, decimal.Zero)

	wantEnd := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !m.PeriodEnd.Equal(wantEnd) {
		t.Errorf("Expected period end %s, got %s", wantEnd, m.PeriodEnd)
	}
}

func TestRollDue(t *testing.T) {
	m := rollableMembership()

	if RollDue(m, time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)) {
		t.Error("Expected no roll due on the period's last day")
	}
	if !RollDue(m, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected roll due the day after period end")
	}
}
