package service

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// ModuleService manages delivery modules. Modules are soft-deleted so
// historical transactions referencing them stay resolvable.
type ModuleService struct {
	moduleRepo   domain.ModuleRepository
	customerRepo domain.CustomerRepository
}

// NewModuleService creates a new ModuleService
func NewModuleService(moduleRepo domain.ModuleRepository, customerRepo domain.CustomerRepository) *ModuleService {
	return &ModuleService{
		moduleRepo:   moduleRepo,
		customerRepo: customerRepo,
	}
}

// CreateModuleInput holds the input for creating a module
type CreateModuleInput struct {
	Name   string
	Status *domain.ModuleStatus
}

// CreateModule creates a delivery module for a customer.
func (s *ModuleService) CreateModule(customerID int32, input CreateModuleInput) (*domain.DeliveryModule, error) {
	if _, err := s.customerRepo.GetByID(customerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	status := domain.ModuleStatusPlanned
	if input.Status != nil {
		switch *input.Status {
		case domain.ModuleStatusPlanned, domain.ModuleStatusActive, domain.ModuleStatusDone:
			status = *input.Status
		default:
			return nil, domain.ErrInvalidModuleStatus
		}
	}

	created, err := persistResult(func() (*domain.DeliveryModule, error) {
		return s.moduleRepo.Create(&domain.DeliveryModule{
			CustomerID: customerID,
			Name:       name,
			Status:     status,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("customer_id", customerID).
		Int32("module_id", created.ID).
		Msg("Created delivery module")

	return created, nil
}

// ListModules returns the customer's active modules.
func (s *ModuleService) ListModules(customerID int32) ([]*domain.DeliveryModule, error) {
	return persistResult(func() ([]*domain.DeliveryModule, error) {
		return s.moduleRepo.GetByCustomer(customerID)
	})
}

// DeleteModule soft-deletes a module. Historical transactions referencing it
// are left untouched.
func (s *ModuleService) DeleteModule(customerID int32, id int32) error {
	err := persist(func() error {
		return s.moduleRepo.SoftDelete(customerID, id)
	})
	if err != nil {
		return err
	}

	log.Info().
		Int32("customer_id", customerID).
		Int32("module_id", id).
		Msg("Deleted delivery module")

	return nil
}
