package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/testutil"
	"github.com/aufwind/aufwind-backend/internal/util"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// ledgerFixture wires the full service graph against in-memory mocks.
type ledgerFixture struct {
	customerRepo    *testutil.MockCustomerRepository
	membershipRepo  *testutil.MockMembershipRepository
	transactionRepo *testutil.MockPointTransactionRepository
	moduleRepo      *testutil.MockModuleRepository
	rollover        *RolloverService
	points          *PointService
	memberships     *MembershipService
	reports         *ReportService
	customers       *CustomerService
	modules         *ModuleService
}

func newLedgerFixture() *ledgerFixture {
	customerRepo := testutil.NewMockCustomerRepository()
	membershipRepo := testutil.NewMockMembershipRepository()
	transactionRepo := testutil.NewMockPointTransactionRepository()
	moduleRepo := testutil.NewMockModuleRepository()
	locks := NewCustomerLocks()
	cache := NewSnapshotCache()
	eventPublisher := events.NoopPublisher{}
	wsPublisher := &websocket.NoOpPublisher{}

	rollover := NewRolloverService(membershipRepo, transactionRepo, nil, locks, cache, eventPublisher, wsPublisher)

	return &ledgerFixture{
		customerRepo:    customerRepo,
		membershipRepo:  membershipRepo,
		transactionRepo: transactionRepo,
		moduleRepo:      moduleRepo,
		rollover:        rollover,
		points:          NewPointService(transactionRepo, membershipRepo, moduleRepo, rollover, locks, cache, eventPublisher, wsPublisher),
		memberships:     NewMembershipService(membershipRepo, transactionRepo, rollover, locks, cache, eventPublisher, wsPublisher),
		reports:         NewReportService(transactionRepo, membershipRepo),
		customers:       NewCustomerService(customerRepo, membershipRepo),
		modules:         NewModuleService(moduleRepo, customerRepo),
	}
}

// currentPeriodMembership builds a tier M membership whose billing window
// contains the current date.
func currentPeriodMembership(customerID int32) *domain.Membership {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return &domain.Membership{
		ID:                customerID,
		CustomerID:        customerID,
		Tier:              domain.TierM,
		MonthlyPoints:     decimal.NewFromInt(200),
		MonthlyPriceCents: 4900,
		ContractStart:     start.AddDate(-1, 0, 0),
		PeriodStart:       start,
		PeriodEnd:         util.PeriodEndFor(start),
		Version:           1,
	}
}

// overdueMembership builds a membership whose window closed monthsAgo months
// back, so the next read or write must roll it forward.
func overdueMembership(customerID int32, monthsAgo int) *domain.Membership {
	membership := currentPeriodMembership(customerID)
	start := membership.PeriodStart.AddDate(0, -monthsAgo, 0)
	membership.PeriodStart = start
	membership.PeriodEnd = util.PeriodEndFor(start)
	return membership
}

func today() time.Time {
	return util.DateOnly(time.Now().UTC())
}
