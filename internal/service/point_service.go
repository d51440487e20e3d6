package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/util"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// PointService applies point transaction mutations. Every write runs under
// the customer's lock, rolls the billing window forward first if it is
// overdue, and invalidates the cached balance snapshot on success.
type PointService struct {
	transactionRepo domain.PointTransactionRepository
	membershipRepo  domain.MembershipRepository
	moduleRepo      domain.ModuleRepository
	rollover        *RolloverService
	locks           *CustomerLocks
	cache           *SnapshotCache
	events          events.Publisher
	ws              websocket.EventPublisher
}

// NewPointService creates a new PointService
func NewPointService(
	transactionRepo domain.PointTransactionRepository,
	membershipRepo domain.MembershipRepository,
	moduleRepo domain.ModuleRepository,
	rollover *RolloverService,
	locks *CustomerLocks,
	cache *SnapshotCache,
	eventPublisher events.Publisher,
	wsPublisher websocket.EventPublisher,
) *PointService {
	return &PointService{
		transactionRepo: transactionRepo,
		membershipRepo:  membershipRepo,
		moduleRepo:      moduleRepo,
		rollover:        rollover,
		locks:           locks,
		cache:           cache,
		events:          eventPublisher,
		ws:              wsPublisher,
	}
}

// BookPointsInput holds the input for booking a point transaction
type BookPointsInput struct {
	Date        time.Time
	Description string
	Points      decimal.Decimal
	Category    domain.Category
	ModuleID    *int32
}

// UpdatePointsInput holds the partial update of a point transaction. Nil
// fields keep their stored value. ClearModule detaches the module reference.
type UpdatePointsInput struct {
	Date        *time.Time
	Description *string
	Points      *decimal.Decimal
	Category    *domain.Category
	ModuleID    *int32
	ClearModule bool
}

// Book validates and appends a point transaction to the customer's ledger.
func (s *PointService) Book(customerID int32, input BookPointsInput) (*domain.PointTransaction, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	membership, _, err = s.rollover.rollIfDueLocked(membership, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	description, err := validateTransactionFields(input.Date, input.Description, input.Points, input.Category)
	if err != nil {
		return nil, err
	}
	if !membership.ContractCovers(input.Date) {
		return nil, domain.ErrDateAfterContractEnd
	}
	if input.ModuleID != nil {
		if _, err := s.moduleRepo.GetByID(customerID, *input.ModuleID); err != nil {
			return nil, domain.ErrModuleNotFound
		}
	}

	transaction := &domain.PointTransaction{
		CustomerID:  customerID,
		Date:        util.DateOnly(input.Date),
		Description: description,
		Points:      input.Points,
		Category:    input.Category,
		ModuleID:    input.ModuleID,
	}

	created, err := persistResult(func() (*domain.PointTransaction, error) {
		return s.transactionRepo.Create(transaction)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(customerID)
	bookingsTotal.Inc()
	s.publish(customerID, websocket.PointTransactionCreated(created), events.KindPointsBooked, &created.ID)

	log.Info().
		Int32("customer_id", customerID).
		Int32("transaction_id", created.ID).
		Str("points", created.Points.String()).
		Str("category", string(created.Category)).
		Msg("Booked point transaction")

	return created, nil
}

// Update applies a partial edit to a transaction with full re-validation of
// the merged result.
func (s *PointService) Update(customerID int32, id int32, input UpdatePointsInput) (*domain.PointTransaction, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	membership, _, err = s.rollover.rollIfDueLocked(membership, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	existing, err := s.transactionRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}

	data := &domain.UpdatePointTransactionData{
		Date:        existing.Date,
		Description: existing.Description,
		Points:      existing.Points,
		Category:    existing.Category,
		ModuleID:    existing.ModuleID,
	}
	if input.Date != nil {
		data.Date = util.DateOnly(*input.Date)
	}
	if input.Description != nil {
		data.Description = *input.Description
	}
	if input.Points != nil {
		data.Points = *input.Points
	}
	if input.Category != nil {
		data.Category = *input.Category
	}
	if input.ClearModule {
		data.ModuleID = nil
	} else if input.ModuleID != nil {
		data.ModuleID = input.ModuleID
	}

	description, err := validateTransactionFields(data.Date, data.Description, data.Points, data.Category)
	if err != nil {
		return nil, err
	}
	data.Description = description
	if !membership.ContractCovers(data.Date) {
		return nil, domain.ErrDateAfterContractEnd
	}
	if input.ModuleID != nil && !input.ClearModule {
		if _, err := s.moduleRepo.GetByID(customerID, *input.ModuleID); err != nil {
			return nil, domain.ErrModuleNotFound
		}
	}

	updated, err := persistResult(func() (*domain.PointTransaction, error) {
		return s.transactionRepo.Update(customerID, id, data)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(customerID)
	s.publish(customerID, websocket.PointTransactionUpdated(updated), events.KindPointsUpdated, &updated.ID)

	log.Info().
		Int32("customer_id", customerID).
		Int32("transaction_id", id).
		Msg("Updated point transaction")

	return updated, nil
}

// Remove deletes a transaction. Balances derive from the log, so removing
// the row re-credits its points exactly; a storage failure leaves the row
// intact and surfaces as a persistence error.
func (s *PointService) Remove(customerID int32, id int32) error {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	err := persist(func() error {
		return s.transactionRepo.Delete(customerID, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(customerID)
	s.publish(customerID, websocket.PointTransactionDeleted(map[string]int32{"id": id}), events.KindPointsDeleted, &id)

	log.Info().
		Int32("customer_id", customerID).
		Int32("transaction_id", id).
		Msg("Deleted point transaction")

	return nil
}

// Get returns a single transaction within the customer scope.
func (s *PointService) Get(customerID int32, id int32) (*domain.PointTransaction, error) {
	return s.transactionRepo.GetByID(customerID, id)
}

// List returns all transactions of a customer ordered by date.
func (s *PointService) List(customerID int32) ([]*domain.PointTransaction, error) {
	return persistResult(func() ([]*domain.PointTransaction, error) {
		return s.transactionRepo.GetByCustomer(customerID)
	})
}

func (s *PointService) publish(customerID int32, wsEvent websocket.Event, kind events.Kind, transactionID *int32) {
	s.ws.Publish(customerID, wsEvent)
	s.publishBalance(customerID)
	if err := s.events.PublishLedgerEvent(context.Background(), events.NewLedgerEvent(customerID, kind, transactionID)); err != nil {
		log.Warn().
			Err(err).
			Int32("customer_id", customerID).
			Str("kind", string(kind)).
			Msg("Failed to publish ledger event")
	}
}

// publishBalance pushes the recomputed snapshot to connected dashboards.
func (s *PointService) publishBalance(customerID int32) {
	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return
	}
	snapshot, err := s.cache.Get(customerID, func() (domain.BalanceSnapshot, error) {
		transactions, err := s.transactionRepo.GetByCustomerAndRange(customerID, membership.PeriodStart, membership.PeriodEnd)
		if err != nil {
			return domain.BalanceSnapshot{}, err
		}
		return domain.CalculateBalance(membership, transactions), nil
	})
	if err != nil {
		log.Warn().Err(err).Int32("customer_id", customerID).Msg("Failed to recompute balance for push")
		return
	}
	s.ws.Publish(customerID, websocket.BalanceUpdated(snapshot))
}

// validateTransactionFields checks the bookable fields and returns the
// trimmed description.
func validateTransactionFields(date time.Time, description string, points decimal.Decimal, category domain.Category) (string, error) {
	if date.IsZero() {
		return "", domain.ErrInvalidDate
	}

	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "", domain.ErrDescriptionRequired
	}
	if len(trimmed) > domain.MaxDescriptionLength {
		return "", domain.ErrDescriptionTooLong
	}

	if points.IsZero() {
		return "", domain.ErrZeroPoints
	}
	if !domain.ValidPointsGranularity(points) {
		return "", domain.ErrPointsGranularity
	}

	if !category.Valid() {
		return "", domain.ErrInvalidCategory
	}

	return trimmed, nil
}
