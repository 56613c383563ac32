package wallet

import "errors"

var (
	// ErrWalletNotFound indicates the presented token or id does not resolve
	// to a wallet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletDisabled occurs when a balance-affecting operation is attempted
	// on a wallet that is not enabled.
	ErrWalletDisabled = errors.New("wallet disabled")

	// ErrAlreadyEnabled occurs when enabling a wallet that is already enabled.
	ErrAlreadyEnabled = errors.New("wallet already enabled")

	// ErrAlreadyDisabled occurs when disabling a wallet that is already disabled.
	ErrAlreadyDisabled = errors.New("wallet already disabled")

	// ErrDuplicateReference indicates the reference id was already used by a
	// prior transaction, anywhere in the ledger. The operation is not applied.
	ErrDuplicateReference = errors.New("reference id already exists")

	// ErrInsufficientBalance occurs when a withdrawal exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount occurs when a transaction amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidReference occurs when the caller supplies an empty reference id.
	ErrInvalidReference = errors.New("reference id is required")

	// ErrStoreUnavailable indicates the ledger store failed; the atomic unit
	// was rolled back and nothing was applied.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrConflict is returned by stores when an atomic unit lost a concurrency
	// conflict and can be retried. The facade retries a bounded number of
	// times before surfacing ErrStoreUnavailable.
	ErrConflict = errors.New("concurrent update conflict")
)
