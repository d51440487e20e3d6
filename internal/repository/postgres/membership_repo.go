package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// MembershipRepository implements domain.MembershipRepository using
// PostgreSQL. Carry-over buckets are stored as a JSONB array ordered newest
// first; the version column backs the optimistic concurrency check.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

const membershipColumns = `id, customer_id, tier, monthly_points, monthly_price_cents,
	discount_percent, bonus_points, contract_start, contract_end,
	period_start, period_end, carry_over, version, created_at, updated_at`

// Create creates a new membership
func (r *MembershipRepository) Create(membership *domain.Membership) (*domain.Membership, error) {
	ctx := context.Background()

	monthlyPoints, err := decimalToPgNumeric(membership.MonthlyPoints)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly points: %w", err)
	}
	bonusPoints, err := decimalToPgNumeric(membership.BonusPoints)
	if err != nil {
		return nil, fmt.Errorf("invalid bonus points: %w", err)
	}
	carryOver, err := marshalCarryOver(membership.CarryOver)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO memberships (customer_id, tier, monthly_points, monthly_price_cents,
			discount_percent, bonus_points, contract_start, contract_end,
			period_start, period_end, carry_over, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		RETURNING `+membershipColumns,
		membership.CustomerID, string(membership.Tier), monthlyPoints, membership.MonthlyPriceCents,
		membership.DiscountPercent, bonusPoints, membership.ContractStart, membership.ContractEnd,
		membership.PeriodStart, membership.PeriodEnd, carryOver,
	)
	return scanMembership(row)
}

// GetByCustomer retrieves the membership for a customer
func (r *MembershipRepository) GetByCustomer(customerID int32) (*domain.Membership, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE customer_id = $1`,
		customerID,
	)
	membership, err := scanMembership(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return membership, nil
}

// Update persists the membership if its stored version still matches
// membership.Version. A version mismatch yields ErrConcurrency.
func (r *MembershipRepository) Update(membership *domain.Membership) (*domain.Membership, error) {
	ctx := context.Background()

	monthlyPoints, err := decimalToPgNumeric(membership.MonthlyPoints)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly points: %w", err)
	}
	bonusPoints, err := decimalToPgNumeric(membership.BonusPoints)
	if err != nil {
		return nil, fmt.Errorf("invalid bonus points: %w", err)
	}
	carryOver, err := marshalCarryOver(membership.CarryOver)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE memberships
		SET tier = $3, monthly_points = $4, monthly_price_cents = $5,
			discount_percent = $6, bonus_points = $7, contract_start = $8,
			contract_end = $9, period_start = $10, period_end = $11,
			carry_over = $12, version = version + 1, updated_at = now()
		WHERE customer_id = $1 AND version = $2
		RETURNING `+membershipColumns,
		membership.CustomerID, membership.Version,
		string(membership.Tier), monthlyPoints, membership.MonthlyPriceCents,
		membership.DiscountPercent, bonusPoints, membership.ContractStart,
		membership.ContractEnd, membership.PeriodStart, membership.PeriodEnd,
		carryOver,
	)
	updated, err := scanMembership(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Distinguish a lost version race from a missing row
			if _, getErr := r.GetByCustomer(membership.CustomerID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrConcurrency
		}
		return nil, err
	}
	return updated, nil
}

// GetDue returns memberships whose period end lies before asOf, ordered by
// customer ID.
func (r *MembershipRepository) GetDue(asOf time.Time) ([]*domain.Membership, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE period_end < $1
		ORDER BY customer_id`,
		asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Membership
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, membership)
	}
	return result, rows.Err()
}

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var membership domain.Membership
	var tier string
	var monthlyPoints, bonusPoints pgtype.Numeric
	var contractEnd pgtype.Date
	var carryOver []byte

	err := row.Scan(
		&membership.ID,
		&membership.CustomerID,
		&tier,
		&monthlyPoints,
		&membership.MonthlyPriceCents,
		&membership.DiscountPercent,
		&bonusPoints,
		&membership.ContractStart,
		&contractEnd,
		&membership.PeriodStart,
		&membership.PeriodEnd,
		&carryOver,
		&membership.Version,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	membership.Tier = domain.MembershipTier(tier)
	membership.MonthlyPoints = pgNumericToDecimal(monthlyPoints)
	membership.BonusPoints = pgNumericToDecimal(bonusPoints)
	if contractEnd.Valid {
		end := contractEnd.Time
		membership.ContractEnd = &end
	}
	if err := json.Unmarshal(carryOver, &membership.CarryOver); err != nil {
		return nil, fmt.Errorf("invalid carry_over payload: %w", err)
	}
	return &membership, nil
}

func marshalCarryOver(buckets []domain.CarryBucket) ([]byte, error) {
	if buckets == nil {
		buckets = []domain.CarryBucket{}
	}
	data, err := json.Marshal(buckets)
	if err != nil {
		return nil, fmt.Errorf("invalid carry_over buckets: %w", err)
	}
	return data, nil
}
