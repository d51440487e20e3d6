package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// PointTransactionRepository implements domain.PointTransactionRepository
// using PostgreSQL
type PointTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewPointTransactionRepository creates a new PointTransactionRepository
func NewPointTransactionRepository(pool *pgxpool.Pool) *PointTransactionRepository {
	return &PointTransactionRepository{pool: pool}
}

const transactionColumns = `id, customer_id, date, description, points, category, module_id, created_at, updated_at`

// Create creates a new point transaction
func (r *PointTransactionRepository) Create(tx *domain.PointTransaction) (*domain.PointTransaction, error) {
	ctx := context.Background()
	points, err := decimalToPgNumeric(tx.Points)
	if err != nil {
		return nil, fmt.Errorf("invalid points: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO point_transactions (customer_id, date, description, points, category, module_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		tx.CustomerID, tx.Date, tx.Description, points, string(tx.Category), tx.ModuleID,
	)
	return scanTransaction(row)
}

// GetByID retrieves a transaction by ID within a customer scope
func (r *PointTransactionRepository) GetByID(customerID int32, id int32) (*domain.PointTransaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM point_transactions
		WHERE customer_id = $1 AND id = $2`,
		customerID, id,
	)
	tx, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// GetByCustomer retrieves all transactions for a customer ordered by date
func (r *PointTransactionRepository) GetByCustomer(customerID int32) ([]*domain.PointTransaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM point_transactions
		WHERE customer_id = $1
		ORDER BY date, id`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetByCustomerAndRange retrieves transactions dated within [start, end]
func (r *PointTransactionRepository) GetByCustomerAndRange(customerID int32, start, end time.Time) ([]*domain.PointTransaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM point_transactions
		WHERE customer_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, id`,
		customerID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// Update replaces the mutable fields of a transaction
func (r *PointTransactionRepository) Update(customerID int32, id int32, data *domain.UpdatePointTransactionData) (*domain.PointTransaction, error) {
	ctx := context.Background()
	points, err := decimalToPgNumeric(data.Points)
	if err != nil {
		return nil, fmt.Errorf("invalid points: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE point_transactions
		SET date = $3, description = $4, points = $5, category = $6, module_id = $7, updated_at = now()
		WHERE customer_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		customerID, id, data.Date, data.Description, points, string(data.Category), data.ModuleID,
	)
	tx, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Delete removes a transaction
func (r *PointTransactionRepository) Delete(customerID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM point_transactions
		WHERE customer_id = $1 AND id = $2`,
		customerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.PointTransaction, error) {
	var tx domain.PointTransaction
	var points pgtype.Numeric
	var category string

	err := row.Scan(
		&tx.ID,
		&tx.CustomerID,
		&tx.Date,
		&tx.Description,
		&points,
		&category,
		&tx.ModuleID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Points = pgNumericToDecimal(points)
	tx.Category = domain.Category(category)
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.PointTransaction, error) {
	var result []*domain.PointTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}
