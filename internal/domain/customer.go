package domain

import "time"

type Customer struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	ContactEmail *string    `json:"contactEmail,omitempty"`
	AuthID       *string    `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

type CustomerRepository interface {
	Create(customer *Customer) (*Customer, error)
	GetByID(id int32) (*Customer, error)
	GetByAuthID(authID string) (*Customer, error)
	GetAll() ([]*Customer, error)
}
