package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"boletamaster/internal/shared/domainerr"
	"boletamaster/internal/tickets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetBalance(ctx context.Context, login string) (decimal.Decimal, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLedger) Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, login, amount)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Credit(ctx context.Context, login string, amount decimal.Decimal) error {
	args := m.Called(ctx, login, amount)
	return args.Error(0)
}

type fixedDiscounts map[string]decimal.Decimal

func (f fixedDiscounts) ActiveDiscountForLocality(_ context.Context, localityID string) (decimal.Decimal, bool, error) {
	d, ok := f[localityID]
	return d, ok, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var show = time.Now().Add(72 * time.Hour)

func simple(t *testing.T, locality, base string) *tickets.Ticket {
	t.Helper()
	tk, err := tickets.NewSimple("T-"+base, "E-1", locality, dec(base), show)
	require.NoError(t, err)
	return tk
}

func TestComputeTotal(t *testing.T) {
	e := NewEngine(nil, nil)

	b, err := e.ComputeTotal(context.Background(), []*tickets.Ticket{simple(t, "L-1", "100")}, dec("0.15"), dec("5"))
	require.NoError(t, err)

	assert.True(t, b.Subtotal.Equal(dec("100")))
	assert.True(t, b.ServiceFee.Equal(dec("15")))
	assert.True(t, b.IssuanceFees.Equal(dec("5")))
	assert.True(t, b.Total.Equal(dec("120")), b.Total.String())
}

func TestComputeTotal_LocalityDiscountOverridesBasePrice(t *testing.T) {
	e := NewEngine(fixedDiscounts{"VIP": dec("0.25")}, nil)
	bundle, err := tickets.NewDiscountBundle("B-1", "E-1", "VIP", dec("100"), show, 2, dec("0.1"))
	require.NoError(t, err)

	ts := []*tickets.Ticket{simple(t, "VIP", "100"), simple(t, "GEN", "40"), bundle}
	b, err := e.ComputeTotal(context.Background(), ts, decimal.Zero, dec("2"))
	require.NoError(t, err)

	// 75 (discounted) + 40 + 180 (bundle keeps its own price)
	assert.True(t, b.Subtotal.Equal(dec("295")), b.Subtotal.String())
	assert.True(t, b.Total.Equal(dec("301")), b.Total.String())
	assert.Equal(t, 3, b.TicketCount)
}

func TestComputeTotal_InvalidInput(t *testing.T) {
	e := NewEngine(nil, nil)
	ctx := context.Background()
	one := []*tickets.Ticket{simple(t, "L-1", "10")}

	_, err := e.ComputeTotal(ctx, nil, dec("0.1"), dec("1"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ComputeTotal(ctx, one, dec("-0.1"), dec("1"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ComputeTotal(ctx, one, dec("0.1"), dec("-1"))
	assert.ErrorIs(t, err, domainerr.ErrValidation)
}

func TestComputeRefund_PolicyAsymmetry(t *testing.T) {
	e := NewEngine(nil, nil)
	tk := simple(t, "L-1", "100")

	cancel, err := e.ComputeRefund(tk, true, dec("5"))
	require.NoError(t, err)
	assert.True(t, cancel.Equal(dec("95")))

	hardship, err := e.ComputeRefund(tk, false, dec("5"))
	require.NoError(t, err)
	assert.True(t, hardship.Equal(dec("100")))

	cheap := simple(t, "L-1", "3")
	floored, err := e.ComputeRefund(cheap, true, dec("5"))
	require.NoError(t, err)
	assert.True(t, floored.IsZero())

	_, err = e.ComputeRefund(tk, true, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcessBalancePurchase(t *testing.T) {
	ctx := context.Background()
	ledger := new(mockLedger)
	e := NewEngine(nil, ledger)

	ledger.On("Debit", ctx, "ana", dec("50")).Return(true, nil).Once()
	require.NoError(t, e.ProcessBalancePurchase(ctx, "ana", dec("50")))

	ledger.On("Debit", ctx, "ana", dec("500")).Return(false, nil).Once()
	err := e.ProcessBalancePurchase(ctx, "ana", dec("500"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.ErrorIs(t, err, domainerr.ErrInsufficientFunds)

	ledger.On("Debit", ctx, "bob", dec("1")).Return(false, errors.New("db down")).Once()
	err = e.ProcessBalancePurchase(ctx, "bob", dec("1"))
	assert.Error(t, err)
	assert.Nil(t, domainerr.Category(err))

	ledger.AssertExpectations(t)
}

func TestProcessRefund(t *testing.T) {
	ctx := context.Background()
	ledger := new(mockLedger)
	e := NewEngine(nil, ledger)

	ledger.On("Credit", ctx, "ana", dec("95")).Return(nil).Once()
	require.NoError(t, e.ProcessRefund(ctx, "ana", dec("95"), "event cancelled"))

	assert.ErrorIs(t, e.ProcessRefund(ctx, "ana", decimal.Zero, "nothing"), ErrInvalidAmount)
	assert.ErrorIs(t, e.ProcessRefund(ctx, "ana", dec("-3"), "negative"), ErrInvalidAmount)

	ledger.AssertExpectations(t)
	ledger.AssertNumberOfCalls(t, "Credit", 1)
}

func TestValidatePurchaseCap_CountsBundlesAsOne(t *testing.T) {
	e := NewEngine(nil, nil)
	bundle, err := tickets.NewDiscountBundle("B-1", "E-1", "L-1", dec("10"), show, 8, dec("0"))
	require.NoError(t, err)

	assert.NoError(t, e.ValidatePurchaseCap([]*tickets.Ticket{bundle, simple(t, "L-1", "1")}, 2))
	assert.ErrorIs(t, e.ValidatePurchaseCap([]*tickets.Ticket{bundle, simple(t, "L-1", "1")}, 1), ErrPurchaseCapExceeded)
	assert.ErrorIs(t, e.ValidatePurchaseCap(nil, 0), ErrInvalidInput)
}

func TestFeeSchedule_InMemory(t *testing.T) {
	ctx := context.Background()
	s := NewFeeSchedule(nil, Fees{ServicePercent: dec("0.10"), FixedFee: dec("5")})
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Update(ctx, Fees{ServicePercent: dec("0.2"), FixedFee: dec("3")}, "root"))
	assert.True(t, s.Current().ServicePercent.Equal(dec("0.2")))

	err := s.Update(ctx, Fees{ServicePercent: dec("-0.2"), FixedFee: dec("3")}, "root")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, s.Current().FixedFee.Equal(dec("3")))
}
