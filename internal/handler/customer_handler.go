package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/service"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// OnboardCustomerRequest represents the customer onboarding request body
type OnboardCustomerRequest struct {
	Name            string  `json:"name"`
	ContactEmail    *string `json:"contactEmail,omitempty"`
	AuthID          *string `json:"authId,omitempty"`
	Tier            string  `json:"tier"`
	ContractStart   *string `json:"contractStart,omitempty"`
	ContractEnd     *string `json:"contractEnd,omitempty"`
	DiscountPercent *int32  `json:"discountPercent,omitempty"`
	BonusPoints     *string `json:"bonusPoints,omitempty"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// OnboardCustomerResponse represents the onboarding result in API responses
type OnboardCustomerResponse struct {
	Customer   CustomerResponse   `json:"customer"`
	Membership MembershipResponse `json:"membership"`
}

// OnboardCustomer handles POST /api/v1/customers
func (h *CustomerHandler) OnboardCustomer(c echo.Context) error {
	var req OnboardCustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.OnboardCustomerInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		AuthID:       req.AuthID,
		Tier:         domain.MembershipTier(req.Tier),
	}

	if req.ContractStart != nil && *req.ContractStart != "" {
		parsed, err := time.Parse("2006-01-02", *req.ContractStart)
		if err != nil {
			return NewValidationError(c, "Invalid contractStart", []ValidationError{
				{Field: "contractStart", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.ContractStart = &parsed
	}
	if req.ContractEnd != nil && *req.ContractEnd != "" {
		parsed, err := time.Parse("2006-01-02", *req.ContractEnd)
		if err != nil {
			return NewValidationError(c, "Invalid contractEnd", []ValidationError{
				{Field: "contractEnd", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.ContractEnd = &parsed
	}
	if req.DiscountPercent != nil {
		input.DiscountPercent = *req.DiscountPercent
	}
	if req.BonusPoints != nil && *req.BonusPoints != "" {
		bonus, err := decimal.NewFromString(*req.BonusPoints)
		if err != nil {
			return NewValidationError(c, "Invalid bonusPoints", []ValidationError{
				{Field: "bonusPoints", Message: "Must be a valid decimal number"},
			})
		}
		input.BonusPoints = bonus
	}

	customer, membership, err := h.customerService.Onboard(input)
	if err != nil {
		log.Debug().Err(err).Str("name", req.Name).Msg("Customer onboarding rejected")
		return mapDomainError(c, err, "Failed to onboard customer")
	}

	return c.JSON(http.StatusCreated, OnboardCustomerResponse{
		Customer:   toCustomerResponse(customer),
		Membership: toMembershipResponse(membership),
	})
}

// GetCustomers handles GET /api/v1/customers
func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	customers, err := h.customerService.ListCustomers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list customers")
		return NewInternalError(c, "Failed to list customers")
	}

	response := make([]CustomerResponse, len(customers))
	for i, customer := range customers {
		response[i] = toCustomerResponse(customer)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		return mapDomainError(c, err, "Failed to get customer")
	}
	return c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func toCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		Name:         customer.Name,
		ContactEmail: customer.ContactEmail,
		CreatedAt:    customer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    customer.UpdatedAt.Format(time.RFC3339),
	}
}

// parseID parses an int32 path parameter
func parseID(c echo.Context, name string) (int32, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
