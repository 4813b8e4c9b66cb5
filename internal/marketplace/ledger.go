package marketplace

import (
	"context"

	"boletamaster/internal/pricing"
	"boletamaster/internal/users"

	"github.com/shopspring/decimal"
)

// walletLedger lets the pricing engine move money through a (possibly
// transaction scoped) wallet repository
type walletLedger struct {
	wallets users.Repository
}

var _ pricing.Ledger = walletLedger{}

func (l walletLedger) GetBalance(ctx context.Context, login string) (decimal.Decimal, error) {
	w, err := l.wallets.GetWallet(ctx, login)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (l walletLedger) Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error) {
	return l.wallets.Debit(ctx, login, amount)
}

func (l walletLedger) Credit(ctx context.Context, login string, amount decimal.Decimal) error {
	return l.wallets.Credit(ctx, login, amount)
}
