package domain

import "time"

type ModuleStatus string

const (
	ModuleStatusPlanned ModuleStatus = "planned"
	ModuleStatusActive  ModuleStatus = "active"
	ModuleStatusDone    ModuleStatus = "done"
)

// DeliveryModule is a unit of work delivered to a customer. Point
// transactions may reference a module; deleting a module never invalidates
// historical transactions that referenced it.
type DeliveryModule struct {
	ID         int32        `json:"id"`
	CustomerID int32        `json:"customerId"`
	Name       string       `json:"name"`
	Status     ModuleStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	DeletedAt  *time.Time   `json:"deletedAt,omitempty"`
}

type ModuleRepository interface {
	Create(module *DeliveryModule) (*DeliveryModule, error)
	GetByID(customerID int32, id int32) (*DeliveryModule, error)
	GetByCustomer(customerID int32) ([]*DeliveryModule, error)
	SoftDelete(customerID int32, id int32) error
}
