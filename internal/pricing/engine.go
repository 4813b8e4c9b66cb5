package pricing

import (
	"context"
	"fmt"

	"boletamaster/internal/tickets"

	"github.com/shopspring/decimal"
)

// DiscountSource resolves the combined active offer for a locality
type DiscountSource interface {
	ActiveDiscountForLocality(ctx context.Context, localityID string) (decimal.Decimal, bool, error)
}

// Ledger is the balance side of the user directory
type Ledger interface {
	GetBalance(ctx context.Context, login string) (decimal.Decimal, error)
	Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error)
	Credit(ctx context.Context, login string, amount decimal.Decimal) error
}

// Engine computes totals and refunds and moves money through the ledger
type Engine struct {
	discounts DiscountSource
	ledger    Ledger
}

func NewEngine(discounts DiscountSource, ledger Ledger) *Engine {
	return &Engine{discounts: discounts, ledger: ledger}
}

var one = decimal.NewFromInt(1)

// EffectiveUnitPrice applies the locality's active discount to non-bundle
// tickets. Discount bundles already carry their discounted price.
func (e *Engine) EffectiveUnitPrice(ctx context.Context, t *tickets.Ticket) (decimal.Decimal, error) {
	if t.Kind == tickets.KindDiscountBundle || e.discounts == nil {
		return t.BasePrice, nil
	}
	fraction, ok, err := e.discounts.ActiveDiscountForLocality(ctx, t.LocalityID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve locality discount: %w", err)
	}
	if !ok {
		return t.BasePrice, nil
	}
	return t.BasePrice.Mul(one.Sub(fraction)), nil
}

// ComputeTotal returns subtotal + subtotal*servicePercent + fixedFee*len(ts)
func (e *Engine) ComputeTotal(ctx context.Context, ts []*tickets.Ticket, servicePercent, fixedFee decimal.Decimal) (Breakdown, error) {
	if len(ts) == 0 {
		return Breakdown{}, fmt.Errorf("%w: ticket list is empty", ErrInvalidInput)
	}
	if servicePercent.IsNegative() || fixedFee.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: fees cannot be negative", ErrInvalidInput)
	}

	subtotal := decimal.Zero
	for _, t := range ts {
		if t == nil {
			return Breakdown{}, fmt.Errorf("%w: nil ticket", ErrInvalidInput)
		}
		price, err := e.EffectiveUnitPrice(ctx, t)
		if err != nil {
			return Breakdown{}, err
		}
		subtotal = subtotal.Add(price)
	}

	subtotal = subtotal.Round(2)
	service := subtotal.Mul(servicePercent).Round(2)
	issuance := fixedFee.Mul(decimal.NewFromInt(int64(len(ts)))).Round(2)

	return Breakdown{
		Subtotal:     subtotal,
		ServiceFee:   service,
		IssuanceFees: issuance,
		Total:        subtotal.Add(service).Add(issuance),
		TicketCount:  len(ts),
	}, nil
}

// ComputeRefund applies the refund policy. Event cancellation keeps the
// issuance fee; a hardship refund returns the full base price.
func (e *Engine) ComputeRefund(t *tickets.Ticket, isEventCancellation bool, fixedFee decimal.Decimal) (decimal.Decimal, error) {
	if t == nil || fixedFee.IsNegative() {
		return decimal.Zero, ErrInvalidInput
	}
	if !isEventCancellation {
		return t.BasePrice, nil
	}
	return decimal.Max(decimal.Zero, t.BasePrice.Sub(fixedFee)), nil
}

// ProcessBalancePurchase debits amount from login, or fails without mutation
func (e *Engine) ProcessBalancePurchase(ctx context.Context, login string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	ok, err := e.ledger.Debit(ctx, login, amount)
	if err != nil {
		return fmt.Errorf("failed to debit %s: %w", login, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s needs %s", ErrInsufficientFunds, login, amount.StringFixed(2))
	}
	return nil
}

// ProcessRefund credits a positive amount to login
func (e *Engine) ProcessRefund(ctx context.Context, login string, amount decimal.Decimal, reason string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := e.ledger.Credit(ctx, login, amount); err != nil {
		return fmt.Errorf("failed to credit refund (%s): %w", reason, err)
	}
	return nil
}

// ValidatePurchaseCap counts every ticket object, bundles included, as one unit
func (e *Engine) ValidatePurchaseCap(ts []*tickets.Ticket, maxPerTransaction int) error {
	if maxPerTransaction <= 0 {
		return fmt.Errorf("%w: cap must be positive", ErrInvalidInput)
	}
	if len(ts) > maxPerTransaction {
		return fmt.Errorf("%w: %d > %d", ErrPurchaseCapExceeded, len(ts), maxPerTransaction)
	}
	return nil
}
