package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/util"
)

// CustomerService handles customer onboarding and lookups. Onboarding
// creates the membership alongside the customer; a customer without a
// membership cannot book points.
type CustomerService struct {
	customerRepo   domain.CustomerRepository
	membershipRepo domain.MembershipRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo domain.CustomerRepository, membershipRepo domain.MembershipRepository) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		membershipRepo: membershipRepo,
	}
}

// OnboardCustomerInput holds the input for onboarding a customer
type OnboardCustomerInput struct {
	Name            string
	ContactEmail    *string
	AuthID          *string
	Tier            domain.MembershipTier
	ContractStart   *time.Time
	ContractEnd     *time.Time
	DiscountPercent int32
	BonusPoints     decimal.Decimal
}

// Onboard creates a customer and its membership with the tier preset. The
// first billing window starts at the contract start.
func (s *CustomerService) Onboard(input OnboardCustomerInput) (*domain.Customer, *domain.Membership, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, nil, domain.ErrNameTooLong
	}

	preset, ok := domain.PresetForTier(input.Tier)
	if !ok {
		return nil, nil, domain.ErrInvalidTier
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, nil, domain.ErrInvalidDiscount
	}
	if input.BonusPoints.IsNegative() {
		return nil, nil, domain.ErrNegativeBonus
	}

	contractStart := util.DateOnly(time.Now().UTC())
	if input.ContractStart != nil {
		contractStart = util.DateOnly(*input.ContractStart)
	}
	var contractEnd *time.Time
	if input.ContractEnd != nil {
		end := util.DateOnly(*input.ContractEnd)
		if end.Before(contractStart) {
			return nil, nil, domain.ErrContractWindow
		}
		contractEnd = &end
	}

	customer, err := persistResult(func() (*domain.Customer, error) {
		return s.customerRepo.Create(&domain.Customer{
			Name:         name,
			ContactEmail: input.ContactEmail,
			AuthID:       input.AuthID,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	membership, err := persistResult(func() (*domain.Membership, error) {
		return s.membershipRepo.Create(&domain.Membership{
			CustomerID:        customer.ID,
			Tier:              input.Tier,
			MonthlyPoints:     preset.MonthlyPoints,
			MonthlyPriceCents: preset.MonthlyPriceCents,
			DiscountPercent:   input.DiscountPercent,
			BonusPoints:       input.BonusPoints,
			ContractStart:     contractStart,
			ContractEnd:       contractEnd,
			PeriodStart:       contractStart,
			PeriodEnd:         util.PeriodEndFor(contractStart),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Int32("customer_id", customer.ID).
		Str("tier", string(input.Tier)).
		Msg("Onboarded customer")

	return customer, membership, nil
}

// GetCustomer returns a customer by ID.
func (s *CustomerService) GetCustomer(id int32) (*domain.Customer, error) {
	return s.customerRepo.GetByID(id)
}

// ListCustomers returns all customers ordered by ID.
func (s *CustomerService) ListCustomers() ([]*domain.Customer, error) {
	return persistResult(func() ([]*domain.Customer, error) {
		return s.customerRepo.GetAll()
	})
}

// GetCustomerByAuthID resolves an auth subject to a customer ID. Implements
// the WebSocket customer lookup.
func (s *CustomerService) GetCustomerByAuthID(authID string) (int32, error) {
	customer, err := s.customerRepo.GetByAuthID(authID)
	if err != nil {
		return 0, err
	}
	return customer.ID, nil
}
