package wallet

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stash-pay/stash_pay/internal/logging"
)

// fakeClock hands out a fixed instant, advanced explicitly by tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seqIDs generates deterministic ids ("id-1", "id-2", ...).
type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NewID() string {
	return fmt.Sprintf("id-%d", g.n.Add(1))
}

type fixture struct {
	store   Store
	clock   *fakeClock
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	store := NewMemoryStore()
	svc := NewService(store, clock, &seqIDs{}, nil, logging.Discard())
	return &fixture{store: store, clock: clock, service: svc}
}

// newEnabledWallet provisions an enabled wallet and returns its token digest.
func (f *fixture) newEnabledWallet(t *testing.T, customerXID string) string {
	t.Helper()
	digest := "digest-" + customerXID
	if _, err := f.service.Create(context.Background(), customerXID, digest); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if _, err := f.service.Enable(context.Background(), digest); err != nil {
		t.Fatalf("enable wallet: %v", err)
	}
	return digest
}
