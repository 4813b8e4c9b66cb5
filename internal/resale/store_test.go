package resale

import (
	"context"
	"testing"
	"time"

	"boletamaster/internal/shared/domainerr"
	"boletamaster/internal/tickets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleTicket(t *testing.T, id, holder string) *tickets.Ticket {
	t.Helper()
	tk, err := tickets.NewSimple(id, "ev-1", "loc-1", decimal.NewFromInt(100), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	tk.SetHolder(holder)
	return tk
}

func TestCreateListing_Rules(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryRepository())
	price := decimal.NewFromInt(150)

	tk := simpleTicket(t, "t-1", "ana")

	_, err := store.CreateListing(ctx, tk, "bob", price)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = store.CreateListing(ctx, tk, "ana", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	listing, err := store.CreateListing(ctx, tk, "ana", price)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.Equal(t, "ev-1", listing.EventID)

	_, err = store.CreateListing(ctx, tk, "ana", price)
	assert.ErrorIs(t, err, ErrAlreadyListed)

	used := simpleTicket(t, "t-2", "ana")
	used.MarkUsed()
	_, err = store.CreateListing(ctx, used, "ana", price)
	assert.ErrorIs(t, err, ErrNotTransferable)

	premium, err := tickets.NewPremiumBundle("p-1", "ev-1", "loc-1", decimal.NewFromInt(300), time.Now().Add(time.Hour), []string{"backstage"}, nil)
	require.NoError(t, err)
	premium.SetHolder("ana")
	_, err = store.CreateListing(ctx, premium, "ana", price)
	assert.ErrorIs(t, err, ErrInvalidTicketType)
}

func TestCreateListing_RoundsBeforeValidating(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryRepository())
	tk := simpleTicket(t, "t-1", "ana")

	_, err := store.CreateListing(ctx, tk, "ana", decimal.RequireFromString("0.004"))
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.ErrorIs(t, err, domainerr.ErrValidation)

	listing, err := store.CreateListing(ctx, tk, "ana", decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.01").Equal(listing.Price))
}

func TestDeactivate_IdempotentAndRelistable(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryRepository())
	tk := simpleTicket(t, "t-1", "ana")

	listing, err := store.CreateListing(ctx, tk, "ana", decimal.NewFromInt(120))
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(ctx, listing, ReasonWithdrawn))
	first := *listing.DeactivatedAt
	require.NoError(t, store.Deactivate(ctx, listing, ReasonSold))
	assert.Equal(t, first, *listing.DeactivatedAt)
	assert.Equal(t, ReasonWithdrawn, listing.DeactivationReason)

	stored, err := store.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	second, err := store.CreateListing(ctx, tk, "ana", decimal.NewFromInt(110))
	require.NoError(t, err)
	assert.NotEqual(t, listing.ID, second.ID)
}

func TestQueryActive_FiltersStaleListings(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryRepository())
	ticketRepo := tickets.NewMemoryRepository()

	fresh := simpleTicket(t, "t-1", "ana")
	stale := simpleTicket(t, "t-2", "ana")
	moved := simpleTicket(t, "t-3", "ana")
	require.NoError(t, ticketRepo.SaveAll(ctx, []*tickets.Ticket{fresh, stale, moved}))

	for _, tk := range []*tickets.Ticket{fresh, stale, moved} {
		_, err := store.CreateListing(ctx, tk, "ana", decimal.NewFromInt(90))
		require.NoError(t, err)
	}

	stale.MarkUsed()
	moved.SetHolder("bob")
	require.NoError(t, ticketRepo.SaveAll(ctx, []*tickets.Ticket{stale, moved}))

	active, err := store.QueryActive(ctx, ticketRepo)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "t-1", active[0].TicketID)

	// stale listings are filtered, not deactivated
	raw, err := store.repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, raw, 3)
}

func TestDeactivateForTicket(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryRepository())

	l, err := store.DeactivateForTicket(ctx, "none", ReasonTicketTransferred)
	require.NoError(t, err)
	assert.Nil(t, l)

	tk := simpleTicket(t, "t-1", "ana")
	_, err = store.CreateListing(ctx, tk, "ana", decimal.NewFromInt(80))
	require.NoError(t, err)

	l, err = store.DeactivateForTicket(ctx, "t-1", ReasonTicketTransferred)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, ReasonTicketTransferred, l.DeactivationReason)
}
