package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

func TestSnapshotCache_ServesCachedValue(t *testing.T) {
	cache := NewSnapshotCache()

	computed := 0
	compute := func() (domain.BalanceSnapshot, error) {
		computed++
		return domain.BalanceSnapshot{UsedPoints: decimal.NewFromInt(50)}, nil
	}

	for i := 0; i < 3; i++ {
		snapshot, err := cache.Get(1, compute)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !snapshot.UsedPoints.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected used points 50, got %s", snapshot.UsedPoints)
		}
	}
	if computed != 1 {
		t.Errorf("Expected exactly one computation, got %d", computed)
	}
}

func TestSnapshotCache_InvalidateForcesRecompute(t *testing.T) {
	cache := NewSnapshotCache()

	if _, err := cache.Get(1, func() (domain.BalanceSnapshot, error) {
		return domain.BalanceSnapshot{UsedPoints: decimal.NewFromInt(10)}, nil
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cache.Invalidate(1)

	snapshot, err := cache.Get(1, func() (domain.BalanceSnapshot, error) {
		return domain.BalanceSnapshot{UsedPoints: decimal.NewFromInt(25)}, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !snapshot.UsedPoints.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected recomputed used points 25, got %s", snapshot.UsedPoints)
	}
}

// A mutation that invalidates while a read's compute is still in flight must
// not end up behind a cached pre-mutation snapshot.
func TestSnapshotCache_DiscardsComputeOverlappingInvalidate(t *testing.T) {
	cache := NewSnapshotCache()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = cache.Get(1, func() (domain.BalanceSnapshot, error) {
			close(started)
			<-release
			return domain.BalanceSnapshot{UsedPoints: decimal.Zero}, nil
		})
	}()

	<-started
	// A booking lands while the read is still computing
	cache.Invalidate(1)
	close(release)
	<-done

	snapshot, err := cache.Get(1, func() (domain.BalanceSnapshot, error) {
		return domain.BalanceSnapshot{UsedPoints: decimal.NewFromInt(7)}, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !snapshot.UsedPoints.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Expected post-mutation used points 7, got %s", snapshot.UsedPoints)
	}
}
