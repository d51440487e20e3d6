package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/util"
)

// ReportService builds the reporting views over the transaction log.
type ReportService struct {
	transactionRepo domain.PointTransactionRepository
	membershipRepo  domain.MembershipRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.PointTransactionRepository, membershipRepo domain.MembershipRepository) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		membershipRepo:  membershipRepo,
	}
}

// CategoryReport is the costs view: per-category point sums over a period.
// Legacy categories present in old data keep their own key.
type CategoryReport struct {
	PeriodStart time.Time                           `json:"periodStart"`
	PeriodEnd   time.Time                           `json:"periodEnd"`
	ByCategory  map[domain.Category]decimal.Decimal `json:"byCategory"`
	Total       decimal.Decimal                     `json:"total"`
}

// CategoriesForMonth builds the category report for one calendar month.
func (s *ReportService) CategoriesForMonth(customerID int32, year int, month time.Month) (*CategoryReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := util.PeriodEndFor(start)
	return s.categoriesFor(customerID, start, end)
}

// CategoriesForCurrentPeriod builds the category report for the membership's
// current billing window.
func (s *ReportService) CategoriesForCurrentPeriod(customerID int32) (*CategoryReport, error) {
	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	return s.categoriesFor(customerID, membership.PeriodStart, membership.PeriodEnd)
}

func (s *ReportService) categoriesFor(customerID int32, start, end time.Time) (*CategoryReport, error) {
	transactions, err := persistResult(func() ([]*domain.PointTransaction, error) {
		return s.transactionRepo.GetByCustomerAndRange(customerID, start, end)
	})
	if err != nil {
		return nil, err
	}

	period := domain.Period{Start: start, End: end}
	byCategory := domain.SumByCategory(transactions, &period)

	total := decimal.Zero
	for _, sum := range byCategory {
		total = total.Add(sum)
	}

	return &CategoryReport{
		PeriodStart: start,
		PeriodEnd:   end,
		ByCategory:  byCategory,
		Total:       total,
	}, nil
}

// Trend returns per-month category totals across the whole log, ascending
// by month.
func (s *ReportService) Trend(customerID int32) ([]domain.MonthTotals, error) {
	transactions, err := persistResult(func() ([]*domain.PointTransaction, error) {
		return s.transactionRepo.GetByCustomer(customerID)
	})
	if err != nil {
		return nil, err
	}
	return domain.SumByMonth(transactions), nil
}
