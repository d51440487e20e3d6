package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies the purpose of a point transaction. The set is a
// fixed, versioned constant; unknown values are rejected at booking time.
type Category string

const (
	CategoryEntwicklung   Category = "entwicklung"
	CategoryWartung       Category = "wartung"
	CategorySchulung      Category = "schulung"
	CategoryBeratung      Category = "beratung"
	CategoryAnalyse       Category = "analyse"
	CategoryKommunikation Category = "kommunikation"
)

// Categories returns the closed set of bookable categories.
func Categories() []Category {
	return []Category{
		CategoryEntwicklung,
		CategoryWartung,
		CategorySchulung,
		CategoryBeratung,
		CategoryAnalyse,
		CategoryKommunikation,
	}
}

// Valid reports whether c is a bookable category. Legacy values already in
// storage are still readable and aggregated, but cannot be booked.
func (c Category) Valid() bool {
	switch c {
	case CategoryEntwicklung, CategoryWartung, CategorySchulung,
		CategoryBeratung, CategoryAnalyse, CategoryKommunikation:
		return true
	}
	return false
}

// pointsStep is the finest bookable granularity (quarter points).
var pointsStep = decimal.New(25, -2)

// ValidPointsGranularity reports whether p is a multiple of a quarter point.
func ValidPointsGranularity(p decimal.Decimal) bool {
	return p.Mod(pointsStep).IsZero()
}

// PointTransaction is a single categorized debit (positive points) or credit
// (negative points) against a customer's membership budget.
type PointTransaction struct {
	ID          int32           `json:"id"`
	CustomerID  int32           `json:"customerId"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Points      decimal.Decimal `json:"points"`
	Category    Category        `json:"category"`
	ModuleID    *int32          `json:"moduleId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UpdatePointTransactionData holds the full set of mutable transaction
// fields for an update.
type UpdatePointTransactionData struct {
	Date        time.Time
	Description string
	Points      decimal.Decimal
	Category    Category
	ModuleID    *int32
}

type PointTransactionRepository interface {
	Create(tx *PointTransaction) (*PointTransaction, error)
	GetByID(customerID int32, id int32) (*PointTransaction, error)
	GetByCustomer(customerID int32) ([]*PointTransaction, error)
	GetByCustomerAndRange(customerID int32, start, end time.Time) ([]*PointTransaction, error)
	Update(customerID int32, id int32, data *UpdatePointTransactionData) (*PointTransaction, error)
	Delete(customerID int32, id int32) error
}
