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

// PointHandler handles point transaction HTTP requests
type PointHandler struct {
	pointService *service.PointService
}

// NewPointHandler creates a new PointHandler
func NewPointHandler(pointService *service.PointService) *PointHandler {
	return &PointHandler{pointService: pointService}
}

// BookPointsRequest represents the booking request body
type BookPointsRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Points      string `json:"points"`
	Category    string `json:"category"`
	ModuleID    *int32 `json:"moduleId,omitempty"`
}

// UpdatePointsRequest represents the partial transaction edit request body.
// A moduleId of 0 detaches the module reference.
type UpdatePointsRequest struct {
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Points      *string `json:"points,omitempty"`
	Category    *string `json:"category,omitempty"`
	ModuleID    *int32  `json:"moduleId,omitempty"`
}

// PointTransactionResponse represents a transaction in API responses
type PointTransactionResponse struct {
	ID          int32  `json:"id"`
	CustomerID  int32  `json:"customerId"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Points      string `json:"points"`
	Category    string `json:"category"`
	ModuleID    *int32 `json:"moduleId,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// BookPoints handles POST /api/v1/customers/:id/points
func (h *PointHandler) BookPoints(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req BookPointsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	points, err := decimal.NewFromString(req.Points)
	if err != nil {
		return NewValidationError(c, "Invalid points", []ValidationError{
			{Field: "points", Message: "Must be a valid decimal number"},
		})
	}

	created, err := h.pointService.Book(customerID, service.BookPointsInput{
		Date:        date,
		Description: req.Description,
		Points:      points,
		Category:    domain.Category(req.Category),
		ModuleID:    req.ModuleID,
	})
	if err != nil {
		log.Debug().Err(err).Int32("customer_id", customerID).Msg("Point booking rejected")
		return mapDomainError(c, err, "Failed to book points")
	}

	return c.JSON(http.StatusCreated, toPointTransactionResponse(created))
}

// GetPoints handles GET /api/v1/customers/:id/points
func (h *PointHandler) GetPoints(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	transactions, err := h.pointService.List(customerID)
	if err != nil {
		log.Error().Err(err).Int32("customer_id", customerID).Msg("Failed to list point transactions")
		return NewInternalError(c, "Failed to list point transactions")
	}

	response := make([]PointTransactionResponse, len(transactions))
	for i, tx := range transactions {
		response[i] = toPointTransactionResponse(tx)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdatePoints handles PATCH /api/v1/customers/:id/points/:txId
func (h *PointHandler) UpdatePoints(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}
	txID, err := parseID(c, "txId")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdatePointsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdatePointsInput{Description: req.Description}

	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.Date = &parsed
	}
	if req.Points != nil {
		points, err := decimal.NewFromString(*req.Points)
		if err != nil {
			return NewValidationError(c, "Invalid points", []ValidationError{
				{Field: "points", Message: "Must be a valid decimal number"},
			})
		}
		input.Points = &points
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		input.Category = &category
	}
	if req.ModuleID != nil {
		if *req.ModuleID == 0 {
			input.ClearModule = true
		} else {
			input.ModuleID = req.ModuleID
		}
	}

	updated, err := h.pointService.Update(customerID, txID, input)
	if err != nil {
		log.Debug().Err(err).Int32("customer_id", customerID).Int32("transaction_id", txID).Msg("Point update rejected")
		return mapDomainError(c, err, "Failed to update point transaction")
	}

	return c.JSON(http.StatusOK, toPointTransactionResponse(updated))
}

// DeletePoints handles DELETE /api/v1/customers/:id/points/:txId
func (h *PointHandler) DeletePoints(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}
	txID, err := parseID(c, "txId")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.pointService.Remove(customerID, txID); err != nil {
		return mapDomainError(c, err, "Failed to delete point transaction")
	}
	return c.NoContent(http.StatusNoContent)
}

func toPointTransactionResponse(tx *domain.PointTransaction) PointTransactionResponse {
	return PointTransactionResponse{
		ID:          tx.ID,
		CustomerID:  tx.CustomerID,
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
		Points:      tx.Points.StringFixed(2),
		Category:    string(tx.Category),
		ModuleID:    tx.ModuleID,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
	}
}
