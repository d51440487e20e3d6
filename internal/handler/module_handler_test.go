package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCreateModule_DefaultsToPlanned(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodPost, "/api/v1/customers/1/modules", `{"name":"Onboarding Phase 1"}`)
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.modules.CreateModule(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ModuleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "planned" {
		t.Errorf("Expected status 'planned', got %s", response.Status)
	}
}

func TestCreateModule_InvalidStatus(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodPost, "/api/v1/customers/1/modules", `{"name":"Phase 2","status":"paused"}`)
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})

	if err := f.modules.CreateModule(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateModule_UnknownCustomer(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()

	req, rec := jsonRequest(http.MethodPost, "/api/v1/customers/8/modules", `{"name":"Phase 1"}`)
	c := newContext(e, req, rec, []string{"id"}, []string{"8"})

	if err := f.modules.CreateModule(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteModule_SoftDeletesAndHidesFromList(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodPost, "/api/v1/customers/1/modules", `{"name":"Phase 1","status":"active"}`)
	c := newContext(e, req, rec, []string{"id"}, []string{"1"})
	if err := f.modules.CreateModule(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Seeding module failed: err=%v code=%d", err, rec.Code)
	}

	req, rec = jsonRequest(http.MethodDelete, "/api/v1/customers/1/modules/1", "")
	c = newContext(e, req, rec, []string{"id", "moduleId"}, []string{"1", "1"})
	if err := f.modules.DeleteModule(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	req, rec = jsonRequest(http.MethodGet, "/api/v1/customers/1/modules", "")
	c = newContext(e, req, rec, []string{"id"}, []string{"1"})
	if err := f.modules.GetModules(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []ModuleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 0 {
		t.Errorf("Expected deleted module hidden from list, got %d entries", len(response))
	}
}

func TestDeleteModule_NotFound(t *testing.T) {
	e := echo.New()
	f := newLedgerHandlers()
	f.seedCustomer(1)

	req, rec := jsonRequest(http.MethodDelete, "/api/v1/customers/1/modules/4", "")
	c := newContext(e, req, rec, []string{"id", "moduleId"}, []string{"1", "4"})

	if err := f.modules.DeleteModule(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
