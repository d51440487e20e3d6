package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// ModuleRepository implements domain.ModuleRepository using PostgreSQL
type ModuleRepository struct {
	pool *pgxpool.Pool
}

// NewModuleRepository creates a new ModuleRepository
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

const moduleColumns = `id, customer_id, name, status, created_at, updated_at, deleted_at`

// Create creates a new module
func (r *ModuleRepository) Create(module *domain.DeliveryModule) (*domain.DeliveryModule, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO delivery_modules (customer_id, name, status)
		VALUES ($1, $2, $3)
		RETURNING `+moduleColumns,
		module.CustomerID, module.Name, string(module.Status),
	)
	return scanModule(row)
}

// GetByID retrieves an active module by ID within a customer scope
func (r *ModuleRepository) GetByID(customerID int32, id int32) (*domain.DeliveryModule, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+moduleColumns+`
		FROM delivery_modules
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL`,
		customerID, id,
	)
	module, err := scanModule(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrModuleNotFound
		}
		return nil, err
	}
	return module, nil
}

// GetByCustomer retrieves all active modules for a customer
func (r *ModuleRepository) GetByCustomer(customerID int32) ([]*domain.DeliveryModule, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM delivery_modules
		WHERE customer_id = $1 AND deleted_at IS NULL
		ORDER BY id`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DeliveryModule
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, module)
	}
	return result, rows.Err()
}

// SoftDelete marks a module as deleted (sets deleted_at timestamp)
func (r *ModuleRepository) SoftDelete(customerID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE delivery_modules
		SET deleted_at = now(), updated_at = now()
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL`,
		customerID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrModuleNotFound
	}
	return nil
}

func scanModule(row pgx.Row) (*domain.DeliveryModule, error) {
	var module domain.DeliveryModule
	var status string
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&module.ID,
		&module.CustomerID,
		&module.Name,
		&status,
		&module.CreatedAt,
		&module.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	module.Status = domain.ModuleStatus(status)
	if deletedAt.Valid {
		module.DeletedAt = &deletedAt.Time
	}
	return &module, nil
}
