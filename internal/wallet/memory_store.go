package wallet

import (
	"context"
	"errors"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
	byToken map[string]string        // token digest -> wallet id
	history map[string][]Transaction // wallet id -> transactions in creation order
	refs    map[string]struct{}      // reference ids across all wallets
}

// NewMemoryStore builds a concurrency-safe in-memory ledger store used by
// tests and dev mode. The mutex is held for the whole atomic unit, which
// gives the same isolation the Postgres row lock provides.
func NewMemoryStore() Store {
	return &memoryStore{
		wallets: make(map[string]Wallet),
		byToken: make(map[string]string),
		history: make(map[string][]Transaction),
		refs:    make(map[string]struct{}),
	}
}

func (s *memoryStore) CreateWallet(_ context.Context, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wallets[w.ID]; exists {
		return errors.New("wallet id already exists")
	}
	if _, exists := s.byToken[w.TokenDigest]; exists {
		return errors.New("token already exists")
	}
	s.wallets[w.ID] = w
	s.byToken[w.TokenDigest] = w.ID
	return nil
}

func (s *memoryStore) WalletByToken(_ context.Context, tokenDigest string) (Wallet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[tokenDigest]
	if !ok {
		return Wallet{}, false, nil
	}
	return s.wallets[id], true, nil
}

func (s *memoryStore) WalletByID(_ context.Context, id string) (Wallet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	return w, ok, nil
}

func (s *memoryStore) Transactions(_ context.Context, walletID string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.history[walletID]
	out := make([]Transaction, len(stored))
	copy(out, stored)
	return out, nil
}

// Atomic stages writes on a scratch view and applies them only when fn
// succeeds, so a failed unit leaves no partial effect.
func (s *memoryStore) Atomic(_ context.Context, walletID string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.wallets[walletID]
	if !ok {
		return ErrWalletNotFound
	}

	tx := &memoryTx{store: s, wallet: current}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.dirty {
		s.wallets[tx.wallet.ID] = tx.wallet
	}
	for _, t := range tx.inserted {
		s.history[t.WalletID] = append(s.history[t.WalletID], t)
		s.refs[t.ReferenceID] = struct{}{}
	}
	return nil
}

type memoryTx struct {
	store    *memoryStore
	wallet   Wallet
	dirty    bool
	inserted []Transaction
}

func (tx *memoryTx) Wallet() Wallet { return tx.wallet }

func (tx *memoryTx) PutWallet(w Wallet) error {
	if w.ID != tx.wallet.ID {
		return errors.New("wallet id mismatch in atomic unit")
	}
	tx.wallet = w
	tx.dirty = true
	return nil
}

func (tx *memoryTx) InsertTransaction(t Transaction) error {
	if _, exists := tx.store.refs[t.ReferenceID]; exists {
		return ErrDuplicateReference
	}
	for _, staged := range tx.inserted {
		if staged.ReferenceID == t.ReferenceID {
			return ErrDuplicateReference
		}
	}
	tx.inserted = append(tx.inserted, t)
	return nil
}
