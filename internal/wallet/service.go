package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stash-pay/stash_pay/internal/notification"
)

// maxConflictRetries bounds transparent retries of atomic units that lost a
// store-level concurrency conflict. Business failures are never retried.
const maxConflictRetries = 3

// Service is the ledger facade: it resolves wallets by token, applies the
// status guard where the operation requires it and dispatches to the
// lifecycle manager or the transaction engine.
type Service struct {
	lifecycle *Lifecycle
	engine    *Engine
	notifier  notification.Notifier
	logger    *slog.Logger
}

// NewService wires the facade. Clock and id generation default to the system
// clock and random UUIDs when nil; notifier may be nil.
func NewService(store Store, clock Clock, ids IDGenerator, notifier notification.Notifier, logger *slog.Logger) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	if ids == nil {
		ids = UUIDGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		lifecycle: NewLifecycle(store, clock, ids),
		engine:    NewEngine(store, clock, ids),
		notifier:  notifier,
		logger:    logger,
	}
}

// Create provisions a disabled wallet for the customer under the given token
// digest.
func (s *Service) Create(ctx context.Context, customerXID, tokenDigest string) (Wallet, error) {
	return s.lifecycle.Create(ctx, customerXID, tokenDigest)
}

// View returns the wallet behind the token. Disabled wallets cannot be
// viewed, matching the guarded balance endpoint behavior.
func (s *Service) View(ctx context.Context, tokenDigest string) (Wallet, error) {
	w, err := s.resolve(ctx, tokenDigest)
	if err != nil {
		return Wallet{}, err
	}
	if !w.Enabled() {
		return Wallet{}, ErrWalletDisabled
	}
	return w, nil
}

// Enable turns a disabled wallet on. This is the one operation exempt from
// the status guard: it is the transition out of "disabled".
func (s *Service) Enable(ctx context.Context, tokenDigest string) (Wallet, error) {
	w, err := s.resolve(ctx, tokenDigest)
	if err != nil {
		return Wallet{}, err
	}
	var updated Wallet
	err = s.withRetry(func() error {
		var inner error
		updated, inner = s.lifecycle.Enable(ctx, w.ID)
		return inner
	})
	if err != nil {
		return Wallet{}, err
	}
	return updated, nil
}

// Disable turns an enabled wallet off.
func (s *Service) Disable(ctx context.Context, tokenDigest string) (Wallet, error) {
	w, err := s.resolve(ctx, tokenDigest)
	if err != nil {
		return Wallet{}, err
	}
	var updated Wallet
	err = s.withRetry(func() error {
		var inner error
		updated, inner = s.lifecycle.Disable(ctx, w.ID)
		return inner
	})
	if err != nil {
		return Wallet{}, err
	}
	return updated, nil
}

// Transactions lists the wallet history in creation order.
func (s *Service) Transactions(ctx context.Context, tokenDigest string) ([]Transaction, error) {
	w, err := s.View(ctx, tokenDigest)
	if err != nil {
		return nil, err
	}
	return s.engine.Transactions(ctx, w.ID)
}

// Deposit credits the wallet identified by the token.
func (s *Service) Deposit(ctx context.Context, tokenDigest string, amount int64, referenceID string) (Transaction, error) {
	return s.post(ctx, tokenDigest, amount, referenceID, s.engine.Deposit, notification.KindDeposit)
}

// Withdraw debits the wallet identified by the token.
func (s *Service) Withdraw(ctx context.Context, tokenDigest string, amount int64, referenceID string) (Transaction, error) {
	return s.post(ctx, tokenDigest, amount, referenceID, s.engine.Withdraw, notification.KindWithdrawal)
}

type postFn func(ctx context.Context, walletID string, amount int64, referenceID string) (Transaction, error)

func (s *Service) post(ctx context.Context, tokenDigest string, amount int64, referenceID string, apply postFn, kind string) (Transaction, error) {
	w, err := s.resolve(ctx, tokenDigest)
	if err != nil {
		return Transaction{}, err
	}
	if !w.Enabled() {
		return Transaction{}, ErrWalletDisabled
	}

	var txn Transaction
	err = s.withRetry(func() error {
		var inner error
		txn, inner = apply(ctx, w.ID, amount, referenceID)
		return inner
	})
	if err != nil {
		return Transaction{}, err
	}

	s.notify(ctx, kind, w.CustomerXID, txn)
	return txn, nil
}

func (s *Service) resolve(ctx context.Context, tokenDigest string) (Wallet, error) {
	w, found, err := s.lifecycle.ByToken(ctx, tokenDigest)
	if err != nil {
		return Wallet{}, err
	}
	if !found {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

// withRetry re-runs the atomic unit on transient store conflicts. After the
// retry budget is exhausted the conflict surfaces as ErrStoreUnavailable.
func (s *Service) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
		s.logger.Warn("retrying ledger operation after conflict", slog.Int("attempt", attempt+1))
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (s *Service) notify(ctx context.Context, kind, customerXID string, txn Transaction) {
	if s.notifier == nil {
		return
	}
	msg := notification.Message{
		Kind:        kind,
		Destination: customerXID,
		Body:        fmt.Sprintf("%s of %d applied to wallet %s (ref %s)", txn.Type, txn.Amount, txn.WalletID, txn.ReferenceID),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification delivery failed", slog.Any("error", err))
	}
}
