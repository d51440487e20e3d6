package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// RolloverService closes overdue billing windows. Reads and writes trigger
// it lazily; the sweep worker triggers it on a ticker. Both paths converge
// here and are idempotent: the window only ever advances, and the optimistic
// version check turns a cross-process race into a refetch.
type RolloverService struct {
	membershipRepo  domain.MembershipRepository
	transactionRepo domain.PointTransactionRepository
	archiver        domain.StatementArchiver
	locks           *CustomerLocks
	cache           *SnapshotCache
	events          events.Publisher
	ws              websocket.EventPublisher
}

// NewRolloverService creates a new RolloverService. archiver may be nil when
// statement archival is disabled.
func NewRolloverService(
	membershipRepo domain.MembershipRepository,
	transactionRepo domain.PointTransactionRepository,
	archiver domain.StatementArchiver,
	locks *CustomerLocks,
	cache *SnapshotCache,
	eventPublisher events.Publisher,
	wsPublisher websocket.EventPublisher,
) *RolloverService {
	return &RolloverService{
		membershipRepo:  membershipRepo,
		transactionRepo: transactionRepo,
		archiver:        archiver,
		locks:           locks,
		cache:           cache,
		events:          eventPublisher,
		ws:              wsPublisher,
	}
}

// RollIfDue rolls the customer's membership forward until its billing window
// contains the current date. Returns the up-to-date membership and whether
// at least one roll happened.
func (s *RolloverService) RollIfDue(customerID int32) (*domain.Membership, bool, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, false, err
	}
	return s.rollIfDueLocked(membership, time.Now().UTC())
}

// RollAllDue rolls every membership whose period end lies before asOf.
// Individual failures are logged and skipped so one broken membership cannot
// stall the sweep. Returns the number of memberships rolled.
func (s *RolloverService) RollAllDue(asOf time.Time) (int, error) {
	due, err := s.membershipRepo.GetDue(asOf)
	if err != nil {
		return 0, err
	}

	rolledCount := 0
	for _, membership := range due {
		customerID := membership.CustomerID

		unlock := s.locks.Lock(customerID)
		fresh, err := s.membershipRepo.GetByCustomer(customerID)
		if err == nil {
			_, rolled, rollErr := s.rollIfDueLocked(fresh, asOf)
			err = rollErr
			if rolled {
				rolledCount++
			}
		}
		unlock()

		if err != nil {
			log.Error().
				Err(err).
				Int32("customer_id", customerID).
				Msg("Failed to roll membership during sweep")
		}
	}
	return rolledCount, nil
}

// rollIfDueLocked performs the rolls. The caller must hold the customer lock.
func (s *RolloverService) rollIfDueLocked(membership *domain.Membership, asOf time.Time) (*domain.Membership, bool, error) {
	rolled := false
	for domain.RollDue(membership, asOf) {
		transactions, err := persistResult(func() ([]*domain.PointTransaction, error) {
			return s.transactionRepo.GetByCustomerAndRange(membership.CustomerID, membership.PeriodStart, membership.PeriodEnd)
		})
		if err != nil {
			return membership, rolled, err
		}

		used := domain.UsedPoints(membership.PeriodStart, membership.PeriodEnd, transactions)
		closing := domain.CalculateBalance(membership, transactions)
		closedStart, closedEnd := membership.PeriodStart, membership.PeriodEnd

		domain.RollPeriod(membership, used)

		updated, err := persistResult(func() (*domain.Membership, error) {
			return s.membershipRepo.Update(membership)
		})
		if errors.Is(err, domain.ErrConcurrency) {
			// Another process rolled in parallel; pick up its result.
			fresh, fetchErr := s.membershipRepo.GetByCustomer(membership.CustomerID)
			if fetchErr != nil {
				return membership, rolled, fetchErr
			}
			membership = fresh
			continue
		}
		if err != nil {
			return membership, rolled, err
		}
		membership = updated
		rolled = true
		periodsRolledTotal.Inc()

		s.archiveStatement(membership.CustomerID, closedStart, closedEnd, transactions, closing)

		log.Info().
			Int32("customer_id", membership.CustomerID).
			Time("closed_period_end", closedEnd).
			Str("used_points", used.String()).
			Time("new_period_end", membership.PeriodEnd).
			Msg("Rolled billing period")
	}

	if rolled {
		s.cache.Invalidate(membership.CustomerID)
		s.ws.Publish(membership.CustomerID, websocket.PeriodRolled(membership))
		if err := s.events.PublishLedgerEvent(context.Background(), events.NewLedgerEvent(membership.CustomerID, events.KindPeriodRolled, nil)); err != nil {
			log.Warn().
				Err(err).
				Int32("customer_id", membership.CustomerID).
				Msg("Failed to publish period rolled event")
		}
	}
	return membership, rolled, nil
}

func (s *RolloverService) archiveStatement(customerID int32, start, end time.Time, transactions []*domain.PointTransaction, closing domain.BalanceSnapshot) {
	if s.archiver == nil {
		return
	}

	statement := buildStatement(start, end, transactions, closing)
	key, err := s.archiver.ArchiveStatement(customerID, end, statement)
	if err != nil {
		log.Warn().
			Err(err).
			Int32("customer_id", customerID).
			Time("period_end", end).
			Msg("Failed to archive period statement")
		return
	}

	log.Debug().
		Int32("customer_id", customerID).
		Str("object_key", key).
		Msg("Archived period statement")
}
