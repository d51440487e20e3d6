package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, name, contact_email, auth_id, created_at, updated_at, deleted_at`

// Create creates a new customer
func (r *CustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, contact_email, auth_id)
		VALUES ($1, $2, $3)
		RETURNING `+customerColumns,
		customer.Name, customer.ContactEmail, customer.AuthID,
	)
	return scanCustomer(row)
}

// GetByID retrieves a customer by its ID
func (r *CustomerRepository) GetByID(id int32) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// GetByAuthID retrieves a customer by its auth subject
func (r *CustomerRepository) GetByAuthID(authID string) (*domain.Customer, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE auth_id = $1 AND deleted_at IS NULL`,
		authID,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// GetAll retrieves all customers ordered by ID
func (r *CustomerRepository) GetAll() ([]*domain.Customer, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE deleted_at IS NULL
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	var deletedAt pgtype.Timestamptz
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.ContactEmail,
		&customer.AuthID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		customer.DeletedAt = &deletedAt.Time
	}
	return &customer, nil
}
