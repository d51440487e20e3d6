package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

func TestBook_Success(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	input := BookPointsInput{
		Date:        today(),
		Description: "  Sprint review workshop  ",
		Points:      decimal.NewFromInt(10),
		Category:    domain.CategoryEntwicklung,
	}

	created, err := f.points.Book(1, input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if created.ID == 0 {
		t.Error("Expected an assigned ID")
	}
	if created.CustomerID != 1 {
		t.Errorf("Expected customer ID 1, got %d", created.CustomerID)
	}
	if created.Description != "Sprint review workshop" {
		t.Errorf("Expected trimmed description, got %q", created.Description)
	}
	if !created.Points.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10 points, got %s", created.Points)
	}
	if created.Category != domain.CategoryEntwicklung {
		t.Errorf("Expected category entwicklung, got %s", created.Category)
	}

	stored, err := f.transactionRepo.GetByID(1, created.ID)
	if err != nil {
		t.Fatalf("Expected transaction to be stored, got %v", err)
	}
	if !stored.Points.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected stored points 10, got %s", stored.Points)
	}
}

func TestBook_ValidationErrors(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	valid := BookPointsInput{
		Date:        today(),
		Description: "Consulting",
		Points:      decimal.NewFromInt(4),
		Category:    domain.CategoryBeratung,
	}

	tests := []struct {
		name    string
		mutate  func(*BookPointsInput)
		wantErr error
	}{
		{"empty description", func(i *BookPointsInput) { i.Description = "   " }, domain.ErrDescriptionRequired},
		{"description too long", func(i *BookPointsInput) { i.Description = strings.Repeat("x", 256) }, domain.ErrDescriptionTooLong},
		{"zero points", func(i *BookPointsInput) { i.Points = decimal.Zero }, domain.ErrZeroPoints},
		{"sub-quarter granularity", func(i *BookPointsInput) { i.Points = decimal.RequireFromString("1.1") }, domain.ErrPointsGranularity},
		{"unknown category", func(i *BookPointsInput) { i.Category = "support" }, domain.ErrInvalidCategory},
		{"zero date", func(i *BookPointsInput) { i.Date = time.Time{} }, domain.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)

			_, err := f.points.Book(1, input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Expected a validation error, got %v", err)
			}
		})
	}

	// Rejected bookings never reach the log
	transactions, _ := f.transactionRepo.GetByCustomer(1)
	if len(transactions) != 0 {
		t.Errorf("Expected empty log, got %d transactions", len(transactions))
	}
}

func TestBook_DateAfterContractEnd(t *testing.T) {
	f := newLedgerFixture()
	membership := currentPeriodMembership(1)
	end := today().AddDate(0, 0, -7)
	membership.ContractEnd = &end
	f.membershipRepo.AddMembership(membership)

	_, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Late booking",
		Points:      decimal.NewFromInt(2),
		Category:    domain.CategoryWartung,
	})
	if !errors.Is(err, domain.ErrDateAfterContractEnd) {
		t.Fatalf("Expected ErrDateAfterContractEnd, got %v", err)
	}
}

func TestBook_ModuleOwnership(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))
	f.membershipRepo.AddMembership(currentPeriodMembership(2))
	f.moduleRepo.AddModule(&domain.DeliveryModule{ID: 10, CustomerID: 2, Name: "Other customer's module", Status: domain.ModuleStatusActive})
	f.moduleRepo.AddModule(&domain.DeliveryModule{ID: 11, CustomerID: 1, Name: "Own module", Status: domain.ModuleStatusActive})

	foreign := int32(10)
	_, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Module work",
		Points:      decimal.NewFromInt(3),
		Category:    domain.CategoryEntwicklung,
		ModuleID:    &foreign,
	})
	if !errors.Is(err, domain.ErrModuleNotFound) {
		t.Fatalf("Expected ErrModuleNotFound for foreign module, got %v", err)
	}

	own := int32(11)
	created, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Module work",
		Points:      decimal.NewFromInt(3),
		Category:    domain.CategoryEntwicklung,
		ModuleID:    &own,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.ModuleID == nil || *created.ModuleID != own {
		t.Error("Expected module reference to be stored")
	}
}

func TestBook_MissingMembership(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.points.Book(9, BookPointsInput{
		Date:        today(),
		Description: "No membership",
		Points:      decimal.NewFromInt(1),
		Category:    domain.CategoryAnalyse,
	})
	if !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Fatalf("Expected ErrMembershipNotFound, got %v", err)
	}
}

func TestBook_RollsOverduePeriodFirst(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(overdueMembership(1, 1))

	_, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "First booking of the new period",
		Points:      decimal.NewFromInt(5),
		Category:    domain.CategorySchulung,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	membership, _ := f.membershipRepo.GetByCustomer(1)
	if !membership.PeriodContains(today()) {
		t.Errorf("Expected rolled window to contain today, got [%s, %s]",
			membership.PeriodStart.Format("2006-01-02"), membership.PeriodEnd.Format("2006-01-02"))
	}
	if len(membership.CarryOver) != 1 {
		t.Fatalf("Expected one carry bucket after the roll, got %d", len(membership.CarryOver))
	}
	// Nothing was booked in the closed period, so the whole allowance rolls
	if !membership.CarryOver[0].Points.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected 200 carried points, got %s", membership.CarryOver[0].Points)
	}
}

func TestBook_RetriesTransientStorageFailure(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))
	f.transactionRepo.CreateErrs = []error{errors.New("connection reset")}

	_, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Flaky storage",
		Points:      decimal.NewFromInt(1),
		Category:    domain.CategoryWartung,
	})
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
}

func TestBook_PersistenceErrorAfterRetry(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))
	f.transactionRepo.CreateErrs = []error{errors.New("down"), errors.New("still down")}

	_, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Broken storage",
		Points:      decimal.NewFromInt(1),
		Category:    domain.CategoryWartung,
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Expected ErrPersistence, got %v", err)
	}
}

func TestUpdate_PartialEdit(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	created, err := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Initial",
		Points:      decimal.NewFromInt(8),
		Category:    domain.CategoryEntwicklung,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	newPoints := decimal.RequireFromString("4.75")
	updated, err := f.points.Update(1, created.ID, UpdatePointsInput{Points: &newPoints})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !updated.Points.Equal(newPoints) {
		t.Errorf("Expected 4.75 points, got %s", updated.Points)
	}
	if updated.Description != "Initial" {
		t.Errorf("Expected description to be kept, got %q", updated.Description)
	}
	if updated.Category != domain.CategoryEntwicklung {
		t.Errorf("Expected category to be kept, got %s", updated.Category)
	}
}

func TestUpdate_ValidatesMergedResult(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	created, _ := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Valid",
		Points:      decimal.NewFromInt(2),
		Category:    domain.CategoryAnalyse,
	})

	empty := "   "
	_, err := f.points.Update(1, created.ID, UpdatePointsInput{Description: &empty})
	if !errors.Is(err, domain.ErrDescriptionRequired) {
		t.Fatalf("Expected ErrDescriptionRequired, got %v", err)
	}

	stored, _ := f.transactionRepo.GetByID(1, created.ID)
	if stored.Description != "Valid" {
		t.Errorf("Expected rejected edit to leave the row untouched, got %q", stored.Description)
	}
}

func TestUpdate_ClearModule(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))
	f.moduleRepo.AddModule(&domain.DeliveryModule{ID: 3, CustomerID: 1, Name: "Module", Status: domain.ModuleStatusActive})

	moduleID := int32(3)
	created, _ := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Module work",
		Points:      decimal.NewFromInt(2),
		Category:    domain.CategoryEntwicklung,
		ModuleID:    &moduleID,
	})

	updated, err := f.points.Update(1, created.ID, UpdatePointsInput{ClearModule: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.ModuleID != nil {
		t.Error("Expected module reference to be cleared")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	desc := "Edit"
	_, err := f.points.Update(1, 404, UpdatePointsInput{Description: &desc})
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestUpdate_EditChangesRemainingExactly(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	created, _ := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Drift check",
		Points:      decimal.NewFromInt(10),
		Category:    domain.CategoryEntwicklung,
	})

	_, before, err := f.memberships.GetMembership(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Edit back and forth several times; no cumulative drift allowed
	for i := 0; i < 5; i++ {
		p := decimal.NewFromInt(int64(10 + i))
		if _, err := f.points.Update(1, created.ID, UpdatePointsInput{Points: &p}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	final := decimal.NewFromInt(10)
	if _, err := f.points.Update(1, created.ID, UpdatePointsInput{Points: &final}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, after, err := f.memberships.GetMembership(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !after.RemainingPoints.Equal(before.RemainingPoints) {
		t.Errorf("Expected remaining %s after N edits, got %s", before.RemainingPoints, after.RemainingPoints)
	}
}

func TestRemove_RecreditsExactly(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	_, before, err := f.memberships.GetMembership(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	created, _ := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Round trip",
		Points:      decimal.NewFromInt(10),
		Category:    domain.CategoryEntwicklung,
	})

	_, mid, _ := f.memberships.GetMembership(1)
	if !mid.RemainingPoints.Equal(before.RemainingPoints.Sub(decimal.NewFromInt(10))) {
		t.Errorf("Expected booking to debit 10 points, got remaining %s", mid.RemainingPoints)
	}

	if err := f.points.Remove(1, created.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, after, err := f.memberships.GetMembership(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !after.RemainingPoints.Equal(before.RemainingPoints) {
		t.Errorf("Expected remaining to return to %s, got %s", before.RemainingPoints, after.RemainingPoints)
	}
}

func TestRemove_NotFound(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	err := f.points.Remove(1, 404)
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestRemove_StorageFailureLeavesRowIntact(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	created, _ := f.points.Book(1, BookPointsInput{
		Date:        today(),
		Description: "Sticky row",
		Points:      decimal.NewFromInt(2),
		Category:    domain.CategoryWartung,
	})

	f.transactionRepo.DeleteErrs = []error{errors.New("down"), errors.New("still down")}
	err := f.points.Remove(1, created.ID)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Expected ErrPersistence, got %v", err)
	}

	if _, err := f.transactionRepo.GetByID(1, created.ID); err != nil {
		t.Error("Expected the row to survive a failed delete")
	}
}

func TestList_OrderedByDate(t *testing.T) {
	f := newLedgerFixture()
	f.membershipRepo.AddMembership(currentPeriodMembership(1))

	first := today().AddDate(0, 0, -2)
	second := today()
	f.points.Book(1, BookPointsInput{Date: second, Description: "Later", Points: decimal.NewFromInt(1), Category: domain.CategoryAnalyse})
	f.points.Book(1, BookPointsInput{Date: first, Description: "Earlier", Points: decimal.NewFromInt(1), Category: domain.CategoryAnalyse})

	transactions, err := f.points.List(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	if transactions[0].Description != "Earlier" {
		t.Errorf("Expected date-ascending order, got %q first", transactions[0].Description)
	}
}
