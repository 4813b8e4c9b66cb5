package tickets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future = now.Add(48 * time.Hour)
	past   = now.Add(-time.Hour)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSimple(t *testing.T, show time.Time) *Ticket {
	t.Helper()
	tk, err := NewSimple("T-1", "E-1", "L-1", dec("100"), show)
	require.NoError(t, err)
	return tk
}

func newBundle(t *testing.T, n int) *Ticket {
	t.Helper()
	b, err := NewDiscountBundle("B-1", "E-1", "L-1", dec("50"), future, n, dec("0.2"))
	require.NoError(t, err)
	return b
}

func TestSimple_Validity(t *testing.T) {
	tk := newSimple(t, future)
	assert.True(t, tk.IsValidAt(now))
	assert.True(t, tk.IsTransferableAt(now))

	expired := newSimple(t, past)
	assert.False(t, expired.IsValidAt(now))
	assert.False(t, expired.IsTransferableAt(now))

	tk.Transferable = false
	assert.True(t, tk.IsValidAt(now))
	assert.False(t, tk.IsTransferableAt(now))
}

func TestWallClockChecks(t *testing.T) {
	upcoming, err := NewSimple("T-2", "E-1", "L-1", dec("100"), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, upcoming.IsValid())
	assert.True(t, upcoming.IsTransferable())

	gone, err := NewSimple("T-3", "E-1", "L-1", dec("100"), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, gone.IsValid())
	assert.False(t, gone.IsTransferable())
}

func TestSimple_ValidityIsMonotonic(t *testing.T) {
	tk := newSimple(t, future)
	require.True(t, tk.MarkUsedAt(now))
	assert.False(t, tk.IsValidAt(now))
	assert.False(t, tk.IsValidAt(now.Add(-24*time.Hour)))
	assert.False(t, newSimple(t, future).IsValidAt(future.Add(time.Second)))
}

func TestMarkUsed_Idempotent(t *testing.T) {
	once := newSimple(t, future)
	twice := newSimple(t, future)

	assert.True(t, once.MarkUsedAt(now))
	assert.True(t, twice.MarkUsedAt(now))
	assert.False(t, twice.MarkUsedAt(now))

	assert.Equal(t, once, twice)
}

func TestMarkUsed_OnExpiredTicketIsNoop(t *testing.T) {
	tk := newSimple(t, past)
	assert.NotPanics(t, func() {
		assert.False(t, tk.MarkUsedAt(now))
	})
	assert.False(t, tk.Used)
}

func TestNewDiscountBundle(t *testing.T) {
	b := newBundle(t, 3)

	assert.Equal(t, KindDiscountBundle, b.Kind)
	assert.True(t, b.BasePrice.Equal(dec("120")), b.BasePrice.String())
	require.Len(t, b.Bundle.Items, 3)
	assert.Equal(t, "B-1-IND-1", b.Bundle.Items[0].ID)
	assert.Equal(t, "B-1-IND-3", b.Bundle.Items[2].ID)
	for _, item := range b.Bundle.Items {
		assert.True(t, item.BasePrice.Equal(dec("40")))
	}
}

func TestNewDiscountBundle_RejectsBadInput(t *testing.T) {
	_, err := NewDiscountBundle("B", "E", "L", dec("50"), future, 0, dec("0.1"))
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = NewDiscountBundle("B", "E", "L", dec("50"), future, 2, dec("1"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = NewDiscountBundle("B", "E", "L", dec("50"), future, 2, dec("-0.1"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = NewSimple("T", "E", "L", dec("-1"), future)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestBundle_ValidIfAnyItemValid(t *testing.T) {
	b := newBundle(t, 3)
	b.Bundle.Items[1].Used = true
	b.Bundle.Items[2].Used = true

	assert.True(t, b.IsValidAt(now))
	assert.Equal(t, 1, b.AvailableCountAt(now))

	b.Bundle.Items[0].Used = true
	assert.False(t, b.IsValidAt(now))
	assert.Equal(t, 0, b.AvailableCountAt(now))
}

func TestBundle_TransferableOnlyIfAllItemsIntact(t *testing.T) {
	b := newBundle(t, 3)
	assert.True(t, b.IsTransferableAt(now))

	b.Bundle.Items[0].Used = true
	assert.True(t, b.IsValidAt(now))
	assert.False(t, b.IsTransferableAt(now))

	c := newBundle(t, 3)
	c.Bundle.Items[2].Transferable = false
	assert.False(t, c.IsTransferableAt(now))
}

func TestBundle_MarkUsedCoversItems(t *testing.T) {
	b := newBundle(t, 2)
	require.True(t, b.MarkUsedAt(now))

	assert.False(t, b.IsValidAt(now))
	for _, item := range b.Bundle.Items {
		assert.True(t, item.Used)
	}
}

func TestBundle_IndividualAccess(t *testing.T) {
	b := newBundle(t, 2)

	item, err := b.IndividualAt(1)
	require.NoError(t, err)
	assert.Equal(t, "B-1-IND-2", item.ID)

	_, err = b.IndividualAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = b.IndividualAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = newSimple(t, future).IndividualAt(0)
	assert.ErrorIs(t, err, ErrNotBundle)
}

func TestBundle_UseIndividual(t *testing.T) {
	b := newBundle(t, 2)

	require.NoError(t, b.UseIndividual(0, now))
	assert.False(t, b.Used)
	assert.ErrorIs(t, b.UseIndividual(0, now), ErrTicketNotValid)

	require.NoError(t, b.UseIndividual(1, now))
	assert.True(t, b.Used)
	assert.False(t, b.IsValidAt(now))
}

func TestPremium_NeverTransferable(t *testing.T) {
	p, err := NewPremiumBundle("P-1", "E-1", "L-1", dec("300"), future, []string{"backstage", "parking"}, nil)
	require.NoError(t, err)

	assert.True(t, p.IsValidAt(now))
	assert.False(t, p.IsTransferableAt(now))

	p.Transferable = true
	assert.False(t, p.IsTransferableAt(now))
}

func TestPremium_MarkUsedCoversExtras(t *testing.T) {
	extra := newSimple(t, future)
	p, err := NewPremiumBundle("P-1", "E-1", "L-1", dec("300"), future, nil, []*Ticket{extra})
	require.NoError(t, err)

	require.True(t, p.MarkUsedAt(now))
	assert.True(t, extra.Used)
}

func TestClone_IsDeep(t *testing.T) {
	b := newBundle(t, 2)
	c := b.Clone()

	c.Bundle.Items[0].Used = true
	c.SetHolder("bob")

	assert.False(t, b.Bundle.Items[0].Used)
	assert.Empty(t, b.HolderLogin)
	assert.Equal(t, "bob", c.Bundle.Items[1].HolderLogin)
}

func TestRecords_RebuildVariants(t *testing.T) {
	b := newBundle(t, 2)
	b.SetHolder("ana")
	rows := toRecords(b)
	require.Len(t, rows, 3)

	rebuilt := fromRecords(rows[0], rows[1:])
	assert.Equal(t, b.ID, rebuilt.ID)
	assert.Equal(t, 2, rebuilt.Bundle.Count)
	require.Len(t, rebuilt.Bundle.Items, 2)
	assert.Equal(t, "B-1-IND-2", rebuilt.Bundle.Items[1].ID)
	assert.Equal(t, "ana", rebuilt.Bundle.Items[1].HolderLogin)

	p, err := NewPremiumBundle("P-1", "E-1", "L-1", dec("300"), future, []string{"lounge"}, nil)
	require.NoError(t, err)
	rows = toRecords(p)
	assert.Equal(t, []string{"lounge"}, fromRecords(rows[0], nil).Premium.Benefits)
}
