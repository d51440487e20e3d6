package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/service"
	"github.com/aufwind/aufwind-backend/internal/testutil"
	"github.com/aufwind/aufwind-backend/internal/util"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// ledgerHandlers wires the full handler stack over the mock repositories.
type ledgerHandlers struct {
	customerRepo    *testutil.MockCustomerRepository
	membershipRepo  *testutil.MockMembershipRepository
	transactionRepo *testutil.MockPointTransactionRepository
	moduleRepo      *testutil.MockModuleRepository

	customer   *CustomerHandler
	membership *MembershipHandler
	points     *PointHandler
	reports    *ReportHandler
	modules    *ModuleHandler
}

func newLedgerHandlers() *ledgerHandlers {
	customerRepo := testutil.NewMockCustomerRepository()
	membershipRepo := testutil.NewMockMembershipRepository()
	transactionRepo := testutil.NewMockPointTransactionRepository()
	moduleRepo := testutil.NewMockModuleRepository()

	locks := service.NewCustomerLocks()
	cache := service.NewSnapshotCache()
	eventPublisher := events.NoopPublisher{}
	wsPublisher := &websocket.NoOpPublisher{}

	rollover := service.NewRolloverService(membershipRepo, transactionRepo, nil, locks, cache, eventPublisher, wsPublisher)
	customerService := service.NewCustomerService(customerRepo, membershipRepo)
	membershipService := service.NewMembershipService(membershipRepo, transactionRepo, rollover, locks, cache, eventPublisher, wsPublisher)
	pointService := service.NewPointService(transactionRepo, membershipRepo, moduleRepo, rollover, locks, cache, eventPublisher, wsPublisher)
	reportService := service.NewReportService(transactionRepo, membershipRepo)
	moduleService := service.NewModuleService(moduleRepo, customerRepo)

	return &ledgerHandlers{
		customerRepo:    customerRepo,
		membershipRepo:  membershipRepo,
		transactionRepo: transactionRepo,
		moduleRepo:      moduleRepo,
		customer:        NewCustomerHandler(customerService),
		membership:      NewMembershipHandler(membershipService),
		points:          NewPointHandler(pointService),
		reports:         NewReportHandler(reportService),
		modules:         NewModuleHandler(moduleService),
	}
}

// seedCustomer adds a customer with a tier M membership on the current
// calendar month.
func (f *ledgerHandlers) seedCustomer(customerID int32) {
	f.customerRepo.AddCustomer(&domain.Customer{
		ID:        customerID,
		Name:      "Acme GmbH",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})

	now := util.DateOnly(time.Now().UTC())
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	f.membershipRepo.AddMembership(&domain.Membership{
		ID:                customerID,
		CustomerID:        customerID,
		Tier:              domain.TierM,
		MonthlyPoints:     decimal.NewFromInt(200),
		MonthlyPriceCents: 4900,
		BonusPoints:       decimal.Zero,
		ContractStart:     periodStart,
		PeriodStart:       periodStart,
		PeriodEnd:         util.PeriodEndFor(periodStart),
		Version:           1,
	})
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func newContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, paramNames []string, paramValues []string) echo.Context {
	c := e.NewContext(req, rec)
	if len(paramNames) > 0 {
		c.SetParamNames(paramNames...)
		c.SetParamValues(paramValues...)
	}
	return c
}

func today() string {
	return util.DateOnly(time.Now().UTC()).Format("2006-01-02")
}
