package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists wallets and transactions in PostgreSQL. Atomic units
// run inside a database transaction with the wallet row locked FOR UPDATE, and
// reference uniqueness is enforced by a constraint rather than a pre-check.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the wallet and transaction tables when absent. The
// transactions.reference_id unique index is what closes the duplicate
// reference race; seq preserves creation order for history listings.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS wallets (
		id            TEXT PRIMARY KEY,
		customer_xid  TEXT NOT NULL,
		token_digest  TEXT NOT NULL UNIQUE,
		status        TEXT NOT NULL,
		balance       BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		enabled_at    TIMESTAMPTZ,
		disabled_at   TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS wallets_customer_xid_idx ON wallets (customer_xid);
	CREATE TABLE IF NOT EXISTS transactions (
		seq           BIGSERIAL,
		id            TEXT PRIMARY KEY,
		wallet_id     TEXT NOT NULL REFERENCES wallets (id),
		type          TEXT NOT NULL,
		amount        BIGINT NOT NULL,
		reference_id  TEXT NOT NULL UNIQUE,
		status        TEXT NOT NULL,
		transacted_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS transactions_wallet_id_idx ON transactions (wallet_id);`

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// CreateWallet inserts a wallet record.
func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	_, err := s.db.Exec(ctx, `INSERT INTO wallets (id, customer_xid, token_digest, status, balance, enabled_at, disabled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.CustomerXID, w.TokenDigest, w.Status, w.Balance, w.EnabledAt, w.DisabledAt)
	if err != nil {
		return translatePgErr(err)
	}
	return nil
}

const walletColumns = `id, customer_xid, token_digest, status, balance, enabled_at, disabled_at`

// WalletByToken resolves a wallet by stored token digest.
func (s *PostgresStore) WalletByToken(ctx context.Context, tokenDigest string) (Wallet, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE token_digest = $1`, tokenDigest)
	return scanWallet(row)
}

// WalletByID resolves a wallet by identifier.
func (s *PostgresStore) WalletByID(ctx context.Context, id string) (Wallet, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	return scanWallet(row)
}

// Transactions lists the wallet's transactions in creation order.
func (s *PostgresStore) Transactions(ctx context.Context, walletID string) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, type, amount, reference_id, status, transacted_at
        FROM transactions WHERE wallet_id = $1 ORDER BY seq`, walletID)
	if err != nil {
		return nil, translatePgErr(err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.ReferenceID, &t.Status, &t.TransactedAt); err != nil {
			return nil, translatePgErr(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgErr(err)
	}
	return out, nil
}

// Atomic locks the wallet row, runs fn against the transactional handle and
// commits, rolling back on any failure.
func (s *PostgresStore) Atomic(ctx context.Context, walletID string, fn func(tx Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translatePgErr(err)
	}
	defer dbTx.Rollback(ctx) // nolint:errcheck

	row := dbTx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, walletID)
	w, found, err := scanWallet(row)
	if err != nil {
		return err
	}
	if !found {
		return ErrWalletNotFound
	}

	handle := &postgresTx{ctx: ctx, tx: dbTx, wallet: w}
	if err := fn(handle); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return translatePgErr(err)
	}
	return nil
}

type postgresTx struct {
	ctx    context.Context
	tx     pgx.Tx
	wallet Wallet
}

func (t *postgresTx) Wallet() Wallet { return t.wallet }

func (t *postgresTx) PutWallet(w Wallet) error {
	_, err := t.tx.Exec(t.ctx, `UPDATE wallets SET status = $2, balance = $3, enabled_at = $4, disabled_at = $5
        WHERE id = $1`, w.ID, w.Status, w.Balance, w.EnabledAt, w.DisabledAt)
	if err != nil {
		return translatePgErr(err)
	}
	t.wallet = w
	return nil
}

func (t *postgresTx) InsertTransaction(txn Transaction) error {
	_, err := t.tx.Exec(t.ctx, `INSERT INTO transactions (id, wallet_id, type, amount, reference_id, status, transacted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.WalletID, txn.Type, txn.Amount, txn.ReferenceID, txn.Status, txn.TransactedAt)
	if err != nil {
		return translatePgErr(err)
	}
	return nil
}

func scanWallet(row pgx.Row) (Wallet, bool, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.CustomerXID, &w.TokenDigest, &w.Status, &w.Balance, &w.EnabledAt, &w.DisabledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, false, nil
	}
	if err != nil {
		return Wallet{}, false, translatePgErr(err)
	}
	return w, true, nil
}

// translatePgErr maps store-level failures onto the ledger error taxonomy:
// unique violations on reference_id become ErrDuplicateReference, lock and
// serialization conflicts become the retryable ErrConflict, and anything
// else is wrapped as ErrStoreUnavailable.
func translatePgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == "transactions_reference_id_key" {
				return ErrDuplicateReference
			}
			return fmt.Errorf("%w: %s", ErrStoreUnavailable, pgErr.ConstraintName)
		case "40001", "40P01":
			return ErrConflict
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
