package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Wallet status values. A wallet starts disabled and moves between the two
// states through the Lifecycle manager.
const (
	StatusDisabled = "disabled"
	StatusEnabled  = "enabled"
)

// Transaction types and the single persisted status. The engine never writes
// a failed transaction, so "success" is the only status that can exist.
const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"

	TxnStatusSuccess = "success"
)

// Wallet is an immutable snapshot of a customer's stored-value account.
// Balance is held in minor currency units.
type Wallet struct {
	ID          string
	CustomerXID string
	TokenDigest string
	Status      string
	Balance     int64
	EnabledAt   *time.Time
	DisabledAt  *time.Time
}

// Enabled reports whether the wallet currently accepts balance operations.
func (w Wallet) Enabled() bool {
	return w.Status == StatusEnabled
}

// Transaction is an immutable record of one balance-affecting event. Amount
// carries the signed delta actually applied (positive deposit, negative
// withdrawal) so the full history sums to the wallet balance.
type Transaction struct {
	ID           string
	WalletID     string
	Type         string
	Amount       int64
	ReferenceID  string
	Status       string
	TransactedAt time.Time
}

// Clock supplies timestamps for lifecycle transitions and transactions.
// Injected so tests control time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

// IDGenerator produces opaque unique identifiers for wallets and transactions.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// UUIDGenerator returns an IDGenerator backed by random UUIDs.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }
