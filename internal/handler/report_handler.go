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

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CategoryReportResponse represents the per-category report in API responses
type CategoryReportResponse struct {
	PeriodStart string            `json:"periodStart"`
	PeriodEnd   string            `json:"periodEnd"`
	ByCategory  map[string]string `json:"byCategory"`
	Total       string            `json:"total"`
}

// MonthTotalsResponse represents one month of the trend view
type MonthTotalsResponse struct {
	Month      string            `json:"month"`
	ByCategory map[string]string `json:"byCategory"`
	Total      string            `json:"total"`
}

// GetCategoryReport handles GET /api/v1/customers/:id/reports/categories.
// With year and month query parameters it reports on that calendar month;
// without them it reports on the current billing window.
func (h *ReportHandler) GetCategoryReport(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	yearStr := c.QueryParam("year")
	monthStr := c.QueryParam("month")

	var report *service.CategoryReport
	if yearStr == "" && monthStr == "" {
		report, err = h.reportService.CategoriesForCurrentPeriod(customerID)
	} else {
		if yearStr == "" || monthStr == "" {
			return NewValidationError(c, "year and month must be given together", nil)
		}
		year, yerr := strconv.Atoi(yearStr)
		if yerr != nil {
			return NewValidationError(c, "Invalid year", nil)
		}
		month, merr := strconv.Atoi(monthStr)
		if merr != nil || month < 1 || month > 12 {
			return NewValidationError(c, "Invalid month (must be 1-12)", nil)
		}
		report, err = h.reportService.CategoriesForMonth(customerID, year, time.Month(month))
	}
	if err != nil {
		log.Error().Err(err).Int32("customer_id", customerID).Msg("Failed to build category report")
		return mapDomainError(c, err, "Failed to build category report")
	}

	return c.JSON(http.StatusOK, toCategoryReportResponse(report))
}

// GetTrend handles GET /api/v1/customers/:id/reports/trend
func (h *ReportHandler) GetTrend(c echo.Context) error {
	customerID, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	months, err := h.reportService.Trend(customerID)
	if err != nil {
		log.Error().Err(err).Int32("customer_id", customerID).Msg("Failed to build trend report")
		return mapDomainError(c, err, "Failed to build trend report")
	}

	response := make([]MonthTotalsResponse, len(months))
	for i, m := range months {
		response[i] = MonthTotalsResponse{
			Month:      m.Month,
			ByCategory: categoriesToStrings(m.ByCategory),
			Total:      m.Total.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func toCategoryReportResponse(report *service.CategoryReport) CategoryReportResponse {
	return CategoryReportResponse{
		PeriodStart: report.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   report.PeriodEnd.Format("2006-01-02"),
		ByCategory:  categoriesToStrings(report.ByCategory),
		Total:       report.Total.StringFixed(2),
	}
}

func categoriesToStrings(byCategory map[domain.Category]decimal.Decimal) map[string]string {
	result := make(map[string]string, len(byCategory))
	for category, sum := range byCategory {
		result[string(category)] = sum.StringFixed(2)
	}
	return result
}
