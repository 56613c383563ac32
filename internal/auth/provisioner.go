package auth

import (
	"context"
	"errors"

	"github.com/stash-pay/stash_pay/internal/wallet"
)

// ErrMissingCustomerXID occurs when account initialization lacks the external
// customer identifier.
var ErrMissingCustomerXID = errors.New("customer_xid is required")

// Provisioner couples token issuance with wallet creation to back account
// initialization. It performs no duplicate-customer check: issuing a fresh
// token for a known customer simply provisions another credentialed wallet,
// the observed upstream policy.
type Provisioner struct {
	wallets *wallet.Service
}

// NewProvisioner builds an account provisioner.
func NewProvisioner(wallets *wallet.Service) *Provisioner {
	return &Provisioner{wallets: wallets}
}

// Init creates a disabled wallet for the customer and returns it together
// with the raw bearer token.
func (p *Provisioner) Init(ctx context.Context, customerXID string) (wallet.Wallet, string, error) {
	if customerXID == "" {
		return wallet.Wallet{}, "", ErrMissingCustomerXID
	}

	token, err := NewToken()
	if err != nil {
		return wallet.Wallet{}, "", err
	}

	w, err := p.wallets.Create(ctx, customerXID, Digest(token))
	if err != nil {
		return wallet.Wallet{}, "", err
	}
	return w, token, nil
}
