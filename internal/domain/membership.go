package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipTier is a preset plan. Changing the tier pre-fills monthly
// points and price from the preset; both may be overridden afterwards.
type MembershipTier string

const (
	TierS MembershipTier = "S"
	TierM MembershipTier = "M"
	TierL MembershipTier = "L"
)

// TierPreset holds the default budget and price of a tier. The table is a
// fixed, versioned constant.
type TierPreset struct {
	MonthlyPoints     decimal.Decimal
	MonthlyPriceCents int32
}

var tierPresets = map[MembershipTier]TierPreset{
	TierS: {MonthlyPoints: decimal.NewFromInt(100), MonthlyPriceCents: 2900},
	TierM: {MonthlyPoints: decimal.NewFromInt(200), MonthlyPriceCents: 4900},
	TierL: {MonthlyPoints: decimal.NewFromInt(400), MonthlyPriceCents: 8900},
}

// PresetForTier returns the preset for a tier, or false for unknown tiers.
func PresetForTier(tier MembershipTier) (TierPreset, bool) {
	preset, ok := tierPresets[tier]
	return preset, ok
}

// CarryOverLifetimePeriods is how many period rolls a carry-over bucket
// survives before it expires.
const CarryOverLifetimePeriods = 3

// CarryBucket is unused budget rolled over from a closed period. Age counts
// the periods the bucket has been usable, starting at 1 for the period right
// after its creation.
type CarryBucket struct {
	Points decimal.Decimal `json:"points"`
	Age    int32           `json:"age"`
}

// Membership is a customer's subscription record: the monthly point budget,
// the current billing window and the carry-over buckets. Used and remaining
// points are never stored; they are derived from the transaction log.
type Membership struct {
	ID                int32           `json:"id"`
	CustomerID        int32           `json:"customerId"`
	Tier              MembershipTier  `json:"tier"`
	MonthlyPoints     decimal.Decimal `json:"monthlyPoints"`
	MonthlyPriceCents int32           `json:"monthlyPriceCents"`
	DiscountPercent   int32           `json:"discountPercent"`
	BonusPoints       decimal.Decimal `json:"bonusPoints"`
	ContractStart     time.Time       `json:"contractStart"`
	ContractEnd       *time.Time      `json:"contractEnd,omitempty"`
	PeriodStart       time.Time       `json:"periodStart"`
	PeriodEnd         time.Time       `json:"periodEnd"`
	CarryOver         []CarryBucket   `json:"carryOver"`
	Version           int32           `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// CarryOverTotal sums the unexpired carry-over buckets.
func (m *Membership) CarryOverTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range m.CarryOver {
		total = total.Add(b.Points)
	}
	return total
}

// BudgetTotal is the full budget available in the current period:
// monthly points + bonus points + unexpired carry-over.
func (m *Membership) BudgetTotal() decimal.Decimal {
	return m.MonthlyPoints.Add(m.BonusPoints).Add(m.CarryOverTotal())
}

// ContractCovers reports whether date falls on or before the contract end.
// A membership without a contract end covers every date.
func (m *Membership) ContractCovers(date time.Time) bool {
	return m.ContractEnd == nil || !date.After(*m.ContractEnd)
}

// PeriodContains reports whether date falls within the current billing
// window (inclusive on both ends).
func (m *Membership) PeriodContains(date time.Time) bool {
	return !date.Before(m.PeriodStart) && !date.After(m.PeriodEnd)
}

type MembershipRepository interface {
	Create(membership *Membership) (*Membership, error)
	GetByCustomer(customerID int32) (*Membership, error)
	// Update persists the membership if its stored version still matches
	// membership.Version and returns the row with the version bumped.
	// A version mismatch yields ErrConcurrency.
	Update(membership *Membership) (*Membership, error)
	// GetDue returns memberships whose period end lies before asOf.
	GetDue(asOf time.Time) ([]*Membership, error)
}
