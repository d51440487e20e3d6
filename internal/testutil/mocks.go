package testutil

import (
	"sort"
	"time"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers map[int32]*domain.Customer
	NextID    int32
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		Customers: make(map[int32]*domain.Customer),
		NextID:    1,
	}
}

// Create creates a new customer
func (m *MockCustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	customer.ID = m.NextID
	m.NextID++
	customer.CreatedAt = time.Now().UTC()
	customer.UpdatedAt = customer.CreatedAt
	m.Customers[customer.ID] = customer
	return customer, nil
}

// GetByID retrieves a customer by ID
func (m *MockCustomerRepository) GetByID(id int32) (*domain.Customer, error) {
	if customer, ok := m.Customers[id]; ok {
		return customer, nil
	}
	return nil, domain.ErrCustomerNotFound
}

// GetByAuthID retrieves a customer by its auth subject
func (m *MockCustomerRepository) GetByAuthID(authID string) (*domain.Customer, error) {
	for _, customer := range m.Customers {
		if customer.AuthID != nil && *customer.AuthID == authID {
			return customer, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

// GetAll retrieves all customers ordered by ID
func (m *MockCustomerRepository) GetAll() ([]*domain.Customer, error) {
	result := make([]*domain.Customer, 0, len(m.Customers))
	for _, customer := range m.Customers {
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddCustomer adds a customer to the mock repository (helper for tests)
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.Customers[customer.ID] = customer
	if customer.ID >= m.NextID {
		m.NextID = customer.ID + 1
	}
}

// MockMembershipRepository is a mock implementation of domain.MembershipRepository
type MockMembershipRepository struct {
	Memberships map[int32]*domain.Membership // keyed by customer ID
	NextID      int32
	UpdateErrs  []error // popped per Update call, nil entries succeed
}

// NewMockMembershipRepository creates a new MockMembershipRepository
func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{
		Memberships: make(map[int32]*domain.Membership),
		NextID:      1,
	}
}

// Create creates a new membership
func (m *MockMembershipRepository) Create(membership *domain.Membership) (*domain.Membership, error) {
	membership.ID = m.NextID
	m.NextID++
	membership.Version = 1
	membership.CreatedAt = time.Now().UTC()
	membership.UpdatedAt = membership.CreatedAt
	m.Memberships[membership.CustomerID] = membership
	return membership, nil
}

// GetByCustomer retrieves the membership for a customer
func (m *MockMembershipRepository) GetByCustomer(customerID int32) (*domain.Membership, error) {
	if membership, ok := m.Memberships[customerID]; ok {
		copied := *membership
		copied.CarryOver = append([]domain.CarryBucket(nil), membership.CarryOver...)
		return &copied, nil
	}
	return nil, domain.ErrMembershipNotFound
}

// Update persists the membership with an optimistic version check
func (m *MockMembershipRepository) Update(membership *domain.Membership) (*domain.Membership, error) {
	if len(m.UpdateErrs) > 0 {
		err := m.UpdateErrs[0]
		m.UpdateErrs = m.UpdateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	stored, ok := m.Memberships[membership.CustomerID]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	if stored.Version != membership.Version {
		return nil, domain.ErrConcurrency
	}
	copied := *membership
	copied.CarryOver = append([]domain.CarryBucket(nil), membership.CarryOver...)
	copied.Version = stored.Version + 1
	copied.UpdatedAt = time.Now().UTC()
	m.Memberships[membership.CustomerID] = &copied
	result := copied
	return &result, nil
}

// GetDue returns memberships whose period end lies before asOf
func (m *MockMembershipRepository) GetDue(asOf time.Time) ([]*domain.Membership, error) {
	var due []*domain.Membership
	for _, membership := range m.Memberships {
		if membership.PeriodEnd.Before(asOf) {
			copied := *membership
			copied.CarryOver = append([]domain.CarryBucket(nil), membership.CarryOver...)
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CustomerID < due[j].CustomerID })
	return due, nil
}

// AddMembership adds a membership to the mock repository (helper for tests)
func (m *MockMembershipRepository) AddMembership(membership *domain.Membership) {
	if membership.Version == 0 {
		membership.Version = 1
	}
	m.Memberships[membership.CustomerID] = membership
	if membership.ID >= m.NextID {
		m.NextID = membership.ID + 1
	}
}

// MockPointTransactionRepository is a mock implementation of domain.PointTransactionRepository
type MockPointTransactionRepository struct {
	Transactions map[int32]*domain.PointTransaction
	NextID       int32
	CreateErrs   []error // popped per Create call, nil entries succeed
	DeleteErrs   []error
}

// NewMockPointTransactionRepository creates a new MockPointTransactionRepository
func NewMockPointTransactionRepository() *MockPointTransactionRepository {
	return &MockPointTransactionRepository{
		Transactions: make(map[int32]*domain.PointTransaction),
		NextID:       1,
	}
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// Create creates a new point transaction
func (m *MockPointTransactionRepository) Create(tx *domain.PointTransaction) (*domain.PointTransaction, error) {
	if err := popErr(&m.CreateErrs); err != nil {
		return nil, err
	}
	tx.ID = m.NextID
	m.NextID++
	tx.CreatedAt = time.Now().UTC()
	tx.UpdatedAt = tx.CreatedAt
	copied := *tx
	m.Transactions[tx.ID] = &copied
	return tx, nil
}

// GetByID retrieves a transaction by ID within a customer scope
func (m *MockPointTransactionRepository) GetByID(customerID int32, id int32) (*domain.PointTransaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.CustomerID != customerID {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

// GetByCustomer retrieves all transactions for a customer ordered by date
func (m *MockPointTransactionRepository) GetByCustomer(customerID int32) ([]*domain.PointTransaction, error) {
	var result []*domain.PointTransaction
	for _, tx := range m.Transactions {
		if tx.CustomerID == customerID {
			copied := *tx
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// GetByCustomerAndRange retrieves transactions dated within [start, end]
func (m *MockPointTransactionRepository) GetByCustomerAndRange(customerID int32, start, end time.Time) ([]*domain.PointTransaction, error) {
	all, _ := m.GetByCustomer(customerID)
	var result []*domain.PointTransaction
	for _, tx := range all {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

// Update replaces the mutable fields of a transaction
func (m *MockPointTransactionRepository) Update(customerID int32, id int32, data *domain.UpdatePointTransactionData) (*domain.PointTransaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.CustomerID != customerID {
		return nil, domain.ErrTransactionNotFound
	}
	tx.Date = data.Date
	tx.Description = data.Description
	tx.Points = data.Points
	tx.Category = data.Category
	tx.ModuleID = data.ModuleID
	tx.UpdatedAt = time.Now().UTC()
	copied := *tx
	return &copied, nil
}

// Delete removes a transaction
func (m *MockPointTransactionRepository) Delete(customerID int32, id int32) error {
	if err := popErr(&m.DeleteErrs); err != nil {
		return err
	}
	tx, ok := m.Transactions[id]
	if !ok || tx.CustomerID != customerID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// MockModuleRepository is a mock implementation of domain.ModuleRepository
type MockModuleRepository struct {
	Modules map[int32]*domain.DeliveryModule
	NextID  int32
}

// NewMockModuleRepository creates a new MockModuleRepository
func NewMockModuleRepository() *MockModuleRepository {
	return &MockModuleRepository{
		Modules: make(map[int32]*domain.DeliveryModule),
		NextID:  1,
	}
}

// Create creates a new module
func (m *MockModuleRepository) Create(module *domain.DeliveryModule) (*domain.DeliveryModule, error) {
	module.ID = m.NextID
	m.NextID++
	module.CreatedAt = time.Now().UTC()
	module.UpdatedAt = module.CreatedAt
	m.Modules[module.ID] = module
	return module, nil
}

// GetByID retrieves a module by ID within a customer scope
func (m *MockModuleRepository) GetByID(customerID int32, id int32) (*domain.DeliveryModule, error) {
	module, ok := m.Modules[id]
	if !ok || module.CustomerID != customerID || module.DeletedAt != nil {
		return nil, domain.ErrModuleNotFound
	}
	return module, nil
}

// GetByCustomer retrieves all active modules for a customer
func (m *MockModuleRepository) GetByCustomer(customerID int32) ([]*domain.DeliveryModule, error) {
	var result []*domain.DeliveryModule
	for _, module := range m.Modules {
		if module.CustomerID == customerID && module.DeletedAt == nil {
			result = append(result, module)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SoftDelete marks a module as deleted
func (m *MockModuleRepository) SoftDelete(customerID int32, id int32) error {
	module, ok := m.Modules[id]
	if !ok || module.CustomerID != customerID || module.DeletedAt != nil {
		return domain.ErrModuleNotFound
	}
	now := time.Now().UTC()
	module.DeletedAt = &now
	return nil
}

// AddModule adds a module to the mock repository (helper for tests)
func (m *MockModuleRepository) AddModule(module *domain.DeliveryModule) {
	m.Modules[module.ID] = module
	if module.ID >= m.NextID {
		m.NextID = module.ID + 1
	}
}
