package wallet

import "context"

// Engine applies idempotent, balance-safe deposits and withdrawals. Every
// mutation runs as one atomic unit: the status and balance checks, the
// transaction insert and the balance update all see the same locked snapshot.
type Engine struct {
	store Store
	clock Clock
	ids   IDGenerator
}

// NewEngine builds a transaction engine.
func NewEngine(store Store, clock Clock, ids IDGenerator) *Engine {
	return &Engine{store: store, clock: clock, ids: ids}
}

// Deposit credits the wallet and records the transaction. The reference id
// must never have been used before, anywhere in the ledger.
func (e *Engine) Deposit(ctx context.Context, walletID string, amount int64, referenceID string) (Transaction, error) {
	return e.apply(ctx, walletID, TypeDeposit, amount, referenceID)
}

// Withdraw debits the wallet and records the transaction. Fails with
// ErrInsufficientBalance when the locked balance cannot cover the amount,
// leaving stored state untouched.
func (e *Engine) Withdraw(ctx context.Context, walletID string, amount int64, referenceID string) (Transaction, error) {
	return e.apply(ctx, walletID, TypeWithdrawal, amount, referenceID)
}

// Transactions returns the wallet's history in creation order. The slice is
// re-fetched on every call, not a live cursor.
func (e *Engine) Transactions(ctx context.Context, walletID string) ([]Transaction, error) {
	return e.store.Transactions(ctx, walletID)
}

func (e *Engine) apply(ctx context.Context, walletID, txnType string, amount int64, referenceID string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if referenceID == "" {
		return Transaction{}, ErrInvalidReference
	}

	delta := amount
	if txnType == TypeWithdrawal {
		delta = -amount
	}

	var txn Transaction
	err := e.store.Atomic(ctx, walletID, func(tx Tx) error {
		w := tx.Wallet()
		if !w.Enabled() {
			return ErrWalletDisabled
		}
		if txnType == TypeWithdrawal && w.Balance < amount {
			return ErrInsufficientBalance
		}

		txn = Transaction{
			ID:           e.ids.NewID(),
			WalletID:     w.ID,
			Type:         txnType,
			Amount:       delta,
			ReferenceID:  referenceID,
			Status:       TxnStatusSuccess,
			TransactedAt: e.clock.Now(),
		}
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}

		w.Balance += delta
		return tx.PutWallet(w)
	})
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}
