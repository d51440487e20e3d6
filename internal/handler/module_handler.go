package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/service"
)

// ModuleHandler handles delivery module HTTP requests
type ModuleHandler struct {
	moduleService *service.ModuleService
}

// NewModuleHandler creates a new ModuleHandler
func NewModuleHandler(moduleService *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// CreateModuleRequest represents the module creation request body
type CreateModuleRequest struct {
	Name   string  `json:"name"`
	Status *string `json:"status,omitempty"`
}

// ModuleResponse represents a delivery module in API responses
type ModuleResponse struct {
	ID         int32  `json:"id"`
	CustomerID int32  `json:"customerId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// CreateModule handles POST /api/v1/customers/:id/modules
func (h *ModuleHandler) CreateModule(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req CreateModuleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.CreateModuleInput{Name: req.Name}
	if req.Status != nil {
		status := domain.ModuleStatus(*req.Status)
		input.Status = &status
	}

	created, err := h.moduleService.CreateModule(customerID, input)
	if err != nil {
		log.Debug().Err(err).Int32("customer_id", customerID).Msg("Module creation rejected")
		return mapDomainError(c, err, "Failed to create module")
	}

	return c.JSON(http.StatusCreated, toModuleResponse(created))
}

// GetModules handles GET /api/v1/customers/:id/modules
func (h *ModuleHandler) GetModules(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	modules, err := h.moduleService.ListModules(customerID)
	if err != nil {
		log.Error().Err(err).Int32("customer_id", customerID).Msg("Failed to list modules")
		return NewInternalError(c, "Failed to list modules")
	}

	response := make([]ModuleResponse, len(modules))
	for i, module := range modules {
		response[i] = toModuleResponse(module)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteModule handles DELETE /api/v1/customers/:id/modules/:moduleId
func (h *ModuleHandler) DeleteModule(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}
	moduleID, err := parseID(c, "moduleId")
	if err != nil {
		return NewValidationError(c, "Invalid module ID", nil)
	}

	if err := h.moduleService.DeleteModule(customerID, moduleID); err != nil {
		return mapDomainError(c, err, "Failed to delete module")
	}
	return c.NoContent(http.StatusNoContent)
}

func toModuleResponse(module *domain.DeliveryModule) ModuleResponse {
	return ModuleResponse{
		ID:         module.ID,
		CustomerID: module.CustomerID,
		Name:       module.Name,
		Status:     string(module.Status),
		CreatedAt:  module.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  module.UpdatedAt.Format(time.RFC3339),
	}
}
