package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stash-pay/stash_pay/internal/logging"
)

func TestViewRequiresEnabledWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.service.Create(ctx, "cust-1", "digest-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.View(ctx, "digest-1"); !errors.Is(err, ErrWalletDisabled) {
		t.Fatalf("expected ErrWalletDisabled on disabled wallet view, got %v", err)
	}
}

func TestTransactionsListedInCreationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	digest := f.newEnabledWallet(t, "cust-1")

	refs := []string{"a", "b", "c"}
	for _, ref := range refs {
		if _, err := f.service.Deposit(ctx, digest, 10, ref); err != nil {
			t.Fatalf("deposit %s: %v", ref, err)
		}
	}

	txns, err := f.service.Transactions(ctx, digest)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != len(refs) {
		t.Fatalf("expected %d transactions, got %d", len(refs), len(txns))
	}
	for i, ref := range refs {
		if txns[i].ReferenceID != ref {
			t.Fatalf("transaction %d out of order: got ref %s", i, txns[i].ReferenceID)
		}
	}
}

// flakyStore reports a configurable number of concurrency conflicts before
// delegating to the real store.
type flakyStore struct {
	Store
	conflicts int
}

func (s *flakyStore) Atomic(ctx context.Context, walletID string, fn func(tx Tx) error) error {
	if s.conflicts > 0 {
		s.conflicts--
		return ErrConflict
	}
	return s.Store.Atomic(ctx, walletID, fn)
}

func TestConflictRetriedTransparently(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: NewMemoryStore(), conflicts: 2}
	svc := NewService(flaky, newFakeClock(), &seqIDs{}, nil, logging.Discard())

	if _, err := svc.Create(ctx, "cust-1", "digest-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Enable(ctx, "digest-1"); err != nil {
		t.Fatalf("enable should succeed within the retry budget: %v", err)
	}

	flaky.conflicts = 2
	if _, err := svc.Deposit(ctx, "digest-1", 100, "r1"); err != nil {
		t.Fatalf("deposit should succeed within the retry budget: %v", err)
	}
}

func TestConflictExhaustionSurfacesStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: NewMemoryStore(), conflicts: maxConflictRetries + 5}
	svc := NewService(flaky, newFakeClock(), &seqIDs{}, nil, logging.Discard())

	if _, err := svc.Create(ctx, "cust-1", "digest-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Enable(ctx, "digest-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable after retry exhaustion, got %v", err)
	}
}
