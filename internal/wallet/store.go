package wallet

import "context"

// Store is the durable ledger collaborator. Lookups report absence with the
// boolean rather than an error; callers decide whether absence is fatal.
type Store interface {
	// CreateWallet inserts a new wallet record.
	CreateWallet(ctx context.Context, w Wallet) error

	// WalletByToken resolves a wallet by its stored token digest.
	WalletByToken(ctx context.Context, tokenDigest string) (Wallet, bool, error)

	// WalletByID resolves a wallet by identifier.
	WalletByID(ctx context.Context, id string) (Wallet, bool, error)

	// Transactions returns the wallet's transactions in creation order.
	Transactions(ctx context.Context, walletID string) ([]Transaction, error)

	// Atomic runs fn against a transactional handle holding the wallet row
	// exclusively. It commits when fn returns nil and rolls back otherwise,
	// leaving no partial effect. Implementations return ErrConflict when the
	// unit lost a concurrency conflict and may be retried.
	Atomic(ctx context.Context, walletID string, fn func(tx Tx) error) error
}

// Tx is the transactional handle passed to an atomic unit. The wallet
// snapshot it exposes is consistent with every read and write inside the
// unit; no interleaving writer is visible between them.
type Tx interface {
	// Wallet returns the locked wallet snapshot the unit operates on.
	Wallet() Wallet

	// PutWallet stages the updated wallet row.
	PutWallet(w Wallet) error

	// InsertTransaction stages a new transaction row. Fails with
	// ErrDuplicateReference when the reference id is already present,
	// enforced by a store-level uniqueness constraint.
	InsertTransaction(t Transaction) error
}
