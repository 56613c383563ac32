package wallet

import "context"

// Lifecycle owns wallet creation and the disabled/enabled transitions with
// their side-effect timestamps.
type Lifecycle struct {
	store Store
	clock Clock
	ids   IDGenerator
}

// NewLifecycle builds a lifecycle manager.
func NewLifecycle(store Store, clock Clock, ids IDGenerator) *Lifecycle {
	return &Lifecycle{store: store, clock: clock, ids: ids}
}

// Create inserts a new disabled wallet with zero balance. Duplicate-customer
// policy is left to the token issuer, matching observed behavior.
func (l *Lifecycle) Create(ctx context.Context, customerXID, tokenDigest string) (Wallet, error) {
	w := Wallet{
		ID:          l.ids.NewID(),
		CustomerXID: customerXID,
		TokenDigest: tokenDigest,
		Status:      StatusDisabled,
		Balance:     0,
	}
	if err := l.store.CreateWallet(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// ByToken resolves a wallet by token digest. Absence is reported with the
// boolean, not an error; callers decide whether it is fatal.
func (l *Lifecycle) ByToken(ctx context.Context, tokenDigest string) (Wallet, bool, error) {
	return l.store.WalletByToken(ctx, tokenDigest)
}

// Enable transitions the wallet to enabled and stamps enabled_at. Fails with
// ErrAlreadyEnabled when the wallet is already enabled.
func (l *Lifecycle) Enable(ctx context.Context, walletID string) (Wallet, error) {
	return l.transition(ctx, walletID, func(w *Wallet) error {
		if w.Enabled() {
			return ErrAlreadyEnabled
		}
		now := l.clock.Now()
		w.Status = StatusEnabled
		w.EnabledAt = &now
		return nil
	})
}

// Disable transitions the wallet to disabled and stamps disabled_at. Fails
// with ErrAlreadyDisabled when the wallet is already disabled.
func (l *Lifecycle) Disable(ctx context.Context, walletID string) (Wallet, error) {
	return l.transition(ctx, walletID, func(w *Wallet) error {
		if !w.Enabled() {
			return ErrAlreadyDisabled
		}
		now := l.clock.Now()
		w.Status = StatusDisabled
		w.DisabledAt = &now
		return nil
	})
}

func (l *Lifecycle) transition(ctx context.Context, walletID string, apply func(w *Wallet) error) (Wallet, error) {
	var updated Wallet
	err := l.store.Atomic(ctx, walletID, func(tx Tx) error {
		w := tx.Wallet()
		if err := apply(&w); err != nil {
			return err
		}
		if err := tx.PutWallet(w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		return Wallet{}, err
	}
	return updated, nil
}
