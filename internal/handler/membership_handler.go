package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/service"
)

// MembershipHandler handles membership-related HTTP requests
type MembershipHandler struct {
	membershipService *service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// MembershipResponse represents a membership in API responses
type MembershipResponse struct {
	ID                int32              `json:"id"`
	CustomerID        int32              `json:"customerId"`
	Tier              string             `json:"tier"`
	MonthlyPoints     string             `json:"monthlyPoints"`
	MonthlyPriceCents int32              `json:"monthlyPriceCents"`
	DiscountPercent   int32              `json:"discountPercent"`
	BonusPoints       string             `json:"bonusPoints"`
	ContractStart     string             `json:"contractStart"`
	ContractEnd       *string            `json:"contractEnd,omitempty"`
	PeriodStart       string             `json:"periodStart"`
	PeriodEnd         string             `json:"periodEnd"`
	CarryOver         []CarryBucketEntry `json:"carryOver"`
	Version           int32              `json:"version"`
}

// CarryBucketEntry represents one carry-over bucket in API responses
type CarryBucketEntry struct {
	Points string `json:"points"`
	Age    int32  `json:"age"`
}

// BalanceResponse represents the derived balance in API responses.
// RemainingPoints keeps its sign so an over-booked deficit stays visible;
// Overdrawn flags it. Utilization is clamped to 0..100.
type BalanceResponse struct {
	UsedPoints         string `json:"usedPoints"`
	RemainingPoints    string `json:"remainingPoints"`
	CarryOverPoints    string `json:"carryOverPoints"`
	UtilizationPercent int32  `json:"utilizationPercent"`
	Overdrawn          bool   `json:"overdrawn"`
}

// MembershipWithBalanceResponse is the GET membership payload
type MembershipWithBalanceResponse struct {
	Membership MembershipResponse `json:"membership"`
	Balance    BalanceResponse    `json:"balance"`
}

// UpdateMembershipRequest represents the membership patch request body
type UpdateMembershipRequest struct {
	Tier              *string `json:"tier,omitempty"`
	MonthlyPoints     *string `json:"monthlyPoints,omitempty"`
	MonthlyPriceCents *int32  `json:"monthlyPriceCents,omitempty"`
	DiscountPercent   *int32  `json:"discountPercent,omitempty"`
	BonusPoints       *string `json:"bonusPoints,omitempty"`
	ContractStart     *string `json:"contractStart,omitempty"`
	ContractEnd       *string `json:"contractEnd,omitempty"`
}

// GetMembership handles GET /api/v1/customers/:id/membership
func (h *MembershipHandler) GetMembership(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	membership, snapshot, err := h.membershipService.GetMembership(customerID)
	if err != nil {
		return mapDomainError(c, err, "Failed to get membership")
	}

	return c.JSON(http.StatusOK, MembershipWithBalanceResponse{
		Membership: toMembershipResponse(membership),
		Balance:    toBalanceResponse(snapshot),
	})
}

// UpdateMembership handles PATCH /api/v1/customers/:id/membership
func (h *MembershipHandler) UpdateMembership(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req UpdateMembershipRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateMembershipInput{
		MonthlyPriceCents: req.MonthlyPriceCents,
		DiscountPercent:   req.DiscountPercent,
	}

	if req.Tier != nil {
		tier := domain.MembershipTier(*req.Tier)
		input.Tier = &tier
	}
	if req.MonthlyPoints != nil {
		points, err := decimal.NewFromString(*req.MonthlyPoints)
		if err != nil {
			return NewValidationError(c, "Invalid monthlyPoints", []ValidationError{
				{Field: "monthlyPoints", Message: "Must be a valid decimal number"},
			})
		}
		input.MonthlyPoints = &points
	}
	if req.BonusPoints != nil {
		bonus, err := decimal.NewFromString(*req.BonusPoints)
		if err != nil {
			return NewValidationError(c, "Invalid bonusPoints", []ValidationError{
				{Field: "bonusPoints", Message: "Must be a valid decimal number"},
			})
		}
		input.BonusPoints = &bonus
	}
	if req.ContractStart != nil {
		parsed, err := time.Parse("2006-01-02", *req.ContractStart)
		if err != nil {
			return NewValidationError(c, "Invalid contractStart", []ValidationError{
				{Field: "contractStart", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.ContractStart = &parsed
	}
	if req.ContractEnd != nil {
		// An explicit empty string clears an open-ended contract
		if *req.ContractEnd == "" {
			input.ClearContractEnd = true
		} else {
			parsed, err := time.Parse("2006-01-02", *req.ContractEnd)
			if err != nil {
				return NewValidationError(c, "Invalid contractEnd", []ValidationError{
					{Field: "contractEnd", Message: "Must be in YYYY-MM-DD format"},
				})
			}
			input.ContractEnd = &parsed
		}
	}

	updated, err := h.membershipService.UpdateMembership(customerID, input)
	if err != nil {
		log.Debug().Err(err).Int32("customer_id", customerID).Msg("Membership update rejected")
		return mapDomainError(c, err, "Failed to update membership")
	}

	return c.JSON(http.StatusOK, toMembershipResponse(updated))
}

func toMembershipResponse(m *domain.Membership) MembershipResponse {
	resp := MembershipResponse{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		Tier:              string(m.Tier),
		MonthlyPoints:     m.MonthlyPoints.StringFixed(2),
		MonthlyPriceCents: m.MonthlyPriceCents,
		DiscountPercent:   m.DiscountPercent,
		BonusPoints:       m.BonusPoints.StringFixed(2),
		ContractStart:     m.ContractStart.Format("2006-01-02"),
		PeriodStart:       m.PeriodStart.Format("2006-01-02"),
		PeriodEnd:         m.PeriodEnd.Format("2006-01-02"),
		CarryOver:         make([]CarryBucketEntry, len(m.CarryOver)),
		Version:           m.Version,
	}
	if m.ContractEnd != nil {
		end := m.ContractEnd.Format("2006-01-02")
		resp.ContractEnd = &end
	}
	for i, bucket := range m.CarryOver {
		resp.CarryOver[i] = CarryBucketEntry{
			Points: bucket.Points.StringFixed(2),
			Age:    bucket.Age,
		}
	}
	return resp
}

func toBalanceResponse(s domain.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		UsedPoints:         s.UsedPoints.StringFixed(2),
		RemainingPoints:    s.RemainingPoints.StringFixed(2),
		CarryOverPoints:    s.CarryOverPoints.StringFixed(2),
		UtilizationPercent: s.DisplayUtilization(),
		Overdrawn:          s.RemainingPoints.IsNegative(),
	}
}
