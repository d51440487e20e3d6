package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
	"github.com/aufwind/aufwind-backend/internal/events"
	"github.com/aufwind/aufwind-backend/internal/util"
	"github.com/aufwind/aufwind-backend/internal/websocket"
)

// MembershipService serves membership reads with recomputed balances and
// applies membership edits. Reads roll an overdue window forward first, so a
// snapshot never reports against a closed period.
type MembershipService struct {
	membershipRepo  domain.MembershipRepository
	transactionRepo domain.PointTransactionRepository
	rollover        *RolloverService
	locks           *CustomerLocks
	cache           *SnapshotCache
	events          events.Publisher
	ws              websocket.EventPublisher
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	membershipRepo domain.MembershipRepository,
	transactionRepo domain.PointTransactionRepository,
	rollover *RolloverService,
	locks *CustomerLocks,
	cache *SnapshotCache,
	eventPublisher events.Publisher,
	wsPublisher websocket.EventPublisher,
) *MembershipService {
	return &MembershipService{
		membershipRepo:  membershipRepo,
		transactionRepo: transactionRepo,
		rollover:        rollover,
		locks:           locks,
		cache:           cache,
		events:          eventPublisher,
		ws:              wsPublisher,
	}
}

// UpdateMembershipInput holds the partial update of a membership. Nil fields
// keep their stored value. Setting Tier pre-fills monthly points and price
// from the tier preset; explicit values in the same edit override the preset.
type UpdateMembershipInput struct {
	Tier              *domain.MembershipTier
	MonthlyPoints     *decimal.Decimal
	MonthlyPriceCents *int32
	DiscountPercent   *int32
	BonusPoints       *decimal.Decimal
	ContractStart     *time.Time
	ContractEnd       *time.Time
	ClearContractEnd  bool
}

// GetMembership returns the membership together with its freshly derived
// balance snapshot.
func (s *MembershipService) GetMembership(customerID int32) (*domain.Membership, domain.BalanceSnapshot, error) {
	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, domain.BalanceSnapshot{}, err
	}

	if domain.RollDue(membership, time.Now().UTC()) {
		membership, err = s.rollLocked(customerID)
		if err != nil {
			return nil, domain.BalanceSnapshot{}, err
		}
	}

	snapshot, err := s.cache.Get(customerID, func() (domain.BalanceSnapshot, error) {
		transactions, err := s.transactionRepo.GetByCustomerAndRange(customerID, membership.PeriodStart, membership.PeriodEnd)
		if err != nil {
			return domain.BalanceSnapshot{}, err
		}
		return domain.CalculateBalance(membership, transactions), nil
	})
	if err != nil {
		return nil, domain.BalanceSnapshot{}, err
	}

	return membership, snapshot, nil
}

func (s *MembershipService) rollLocked(customerID int32) (*domain.Membership, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	membership, err := s.membershipRepo.GetByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	membership, _, err = s.rollover.rollIfDueLocked(membership, time.Now().UTC())
	return membership, err
}

// UpdateMembership applies a partial membership edit.
func (s *MembershipService) UpdateMembership(customerID int32, input UpdateMembershipInput) (*domain.Membership, error) {
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

	if input.Tier != nil {
		preset, ok := domain.PresetForTier(*input.Tier)
		if !ok {
			return nil, domain.ErrInvalidTier
		}
		membership.Tier = *input.Tier
		membership.MonthlyPoints = preset.MonthlyPoints
		membership.MonthlyPriceCents = preset.MonthlyPriceCents
	}

	if input.MonthlyPoints != nil {
		if input.MonthlyPoints.IsNegative() {
			return nil, domain.ErrNegativeMonthlyPoints
		}
		membership.MonthlyPoints = *input.MonthlyPoints
	}
	if input.MonthlyPriceCents != nil {
		if *input.MonthlyPriceCents < 0 {
			return nil, domain.ErrNegativePrice
		}
		membership.MonthlyPriceCents = *input.MonthlyPriceCents
	}
	if input.DiscountPercent != nil {
		if *input.DiscountPercent < 0 || *input.DiscountPercent > 100 {
			return nil, domain.ErrInvalidDiscount
		}
		membership.DiscountPercent = *input.DiscountPercent
	}
	if input.BonusPoints != nil {
		if input.BonusPoints.IsNegative() {
			return nil, domain.ErrNegativeBonus
		}
		membership.BonusPoints = *input.BonusPoints
	}
	if input.ContractStart != nil {
		membership.ContractStart = util.DateOnly(*input.ContractStart)
	}
	if input.ClearContractEnd {
		membership.ContractEnd = nil
	} else if input.ContractEnd != nil {
		end := util.DateOnly(*input.ContractEnd)
		membership.ContractEnd = &end
	}
	if membership.ContractEnd != nil && membership.ContractEnd.Before(membership.ContractStart) {
		return nil, domain.ErrContractWindow
	}

	updated, err := persistResult(func() (*domain.Membership, error) {
		return s.membershipRepo.Update(membership)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(customerID)
	s.ws.Publish(customerID, websocket.MembershipUpdated(updated))
	snapshot, snapErr := s.cache.Get(customerID, func() (domain.BalanceSnapshot, error) {
		transactions, terr := s.transactionRepo.GetByCustomerAndRange(customerID, updated.PeriodStart, updated.PeriodEnd)
		if terr != nil {
			return domain.BalanceSnapshot{}, terr
		}
		return domain.CalculateBalance(updated, transactions), nil
	})
	if snapErr == nil {
		s.ws.Publish(customerID, websocket.BalanceUpdated(snapshot))
	}
	if err := s.events.PublishLedgerEvent(context.Background(), events.NewLedgerEvent(customerID, events.KindMembershipUpdated, nil)); err != nil {
		log.Warn().
			Err(err).
			Int32("customer_id", customerID).
			Msg("Failed to publish membership updated event")
	}

	log.Info().
		Int32("customer_id", customerID).
		Str("tier", string(updated.Tier)).
		Msg("Updated membership")

	return updated, nil
}
