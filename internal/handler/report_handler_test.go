package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

func seedMarchTransactions(f *ledgerHandlers) {
	f.transactionRepo.Create(&domain.PointTransaction{
		CustomerID: 1,
		Date:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Points:     decimal.NewFromInt(50),
		Category:   domain.CategoryEntwicklung,
	})
	f.transactionRepo.Create(&domain.PointTransaction{
		CustomerID: 1,
		Date:       time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Points:     decimal.NewFromInt(15),
		Category:   domain.CategorySchulung,
	})
	// April booking must not leak into the March report
	f.transactionRepo.Create(&domain.PointTransaction{
		CustomerID: 1,
		Date:       time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Points:     decimal.NewFromInt(8),
		Category:   domain.CategoryWartung,
	})
}

func TestGetCategoryReport_ForMonth(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)
	seedMarchTransactions(f)

	req, rec := jsonRequest(http.MethodGet, "/api/v1/customers/1/reports/categories?year=2026&month=3", "")
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.reports.GetCategoryReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response CategoryReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.PeriodStart != "2026-03-01" {
		t.Errorf("Expected period start '2026-03-01', got %s", response.PeriodStart)
	}
	if response.ByCategory["entwicklung"] != "50.00" {
		t.Errorf("Expected entwicklung '50.00', got %s", response.ByCategory["entwicklung"])
	}
	if response.ByCategory["schulung"] != "15.00" {
		t.Errorf("Expected schulung '15.00', got %s", response.ByCategory["schulung"])
	}
	if _, ok := response.ByCategory["wartung"]; ok {
		t.Error("April booking leaked into March report")
	}
	if response.Total != "65.00" {
		t.Errorf("Expected total '65.00', got %s", response.Total)
	}
}

func TestGetCategoryReport_DefaultsToCurrentPeriod(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	body := `{"date":"` + today() + `","description":"Audit","points":"10","category":"analyse"}`
	req, rec := jsonRequest(http.MethodPost, "/api/v1/customers/1/points", body)
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})
	if err := f.points.BookPoints(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Seeding booking failed: err=%v code=%d", err, rec.Code)
	}

	req, rec = jsonRequest(http.MethodGet, "/api/v1/customers/1/reports/categories", "")
	c = newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.reports.GetCategoryReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response CategoryReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ByCategory["analyse"] != "10.00" {
		t.Errorf("Expected analyse '10.00', got %s", response.ByCategory["analyse"])
	}
}

func TestGetCategoryReport_InvalidMonth(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodGet, "/api/v1/customers/1/reports/categories?year=2026&month=13", "")
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.reports.GetCategoryReport(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetCategoryReport_YearWithoutMonth(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodGet, "/api/v1/customers/1/reports/categories?year=2026", "")
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.reports.GetCategoryReport(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTrend_AscendingMonths(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)
	seedMarchTransactions(f)

	req, rec := jsonRequest(http.MethodGet, "/api/v1/customers/1/reports/trend", "")
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.reports.GetTrend(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []MonthTotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 months, got %d", len(response))
	}
	if response[0].Month != "2026-03" || response[1].Month != "2026-04" {
		t.Errorf("Expected ascending months [2026-03 2026-04], got [%s %s]", response[0].Month, response[1].Month)
	}
	if response[0].Total != "65.00" {
		t.Errorf("Expected March total '65.00', got %s", response[0].Total)
	}
}
