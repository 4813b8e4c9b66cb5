package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/events"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/shared/constants"
	"boletamaster/internal/shared/domainerr"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"
	"boletamaster/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var d = decimal.NewFromInt

type fixture struct {
	svc     Service
	users   users.Service
	events  events.Service
	venues  venues.Service
	stores  Stores
	eventID string
	locID   string
}

type fixtureOption func(*Stores)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	userRepo := users.NewMemoryRepository()
	userService := users.NewService(userRepo, users.WithHashCost(bcrypt.MinCost))
	eventService := events.NewService(events.NewMemoryRepository())
	venueService := venues.NewService(venues.NewMemoryRepository(), eventService, nil)
	catalog := NewCatalogAdapter(eventService, venueService)

	for _, in := range []users.RegisterInput{
		{Login: "org", Password: "pw", Role: users.RoleOrganizer},
		{Login: "other-org", Password: "pw", Role: users.RoleOrganizer},
		{Login: "admin", Password: "pw", Role: users.RoleAdmin},
		{Login: "seller", Password: "pw", Role: users.RoleBuyer, InitialBalance: d(1000)},
		{Login: "ana", Password: "pw", Role: users.RoleBuyer, InitialBalance: d(500)},
		{Login: "bob", Password: "pw", Role: users.RoleBuyer, InitialBalance: d(500)},
		{Login: "poor", Password: "pw", Role: users.RoleBuyer, InitialBalance: d(50)},
	} {
		_, err := userService.Register(ctx, in)
		require.NoError(t, err)
	}

	venue, err := venueService.CreateVenue(ctx, "admin", venues.VenueInput{Name: "Arena", Location: "Centro", Capacity: 500})
	require.NoError(t, err)
	event, err := eventService.CreateEvent(ctx, "org", events.CreateEventInput{
		Name:     "Concierto",
		VenueID:  venue.ID,
		ShowTime: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	_, err = eventService.ApproveEvent(ctx, event.ID)
	require.NoError(t, err)
	loc, err := venueService.AddLocality(ctx, "org", event.ID, venues.LocalityInput{
		Name:           "General",
		Capacity:       100,
		BasePrice:      d(100),
		BundleDiscount: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)

	stores := Stores{
		Tickets:   tickets.NewMemoryRepository(),
		Listings:  resale.NewMemoryRepository(),
		Offers:    counteroffers.NewMemoryRepository(),
		Purchases: purchases.NewMemoryRepository(),
		Wallets:   userRepo,
		Inventory: catalog,
	}
	writes := stores
	for _, opt := range opts {
		opt(&writes)
	}

	svc := NewService(Dependencies{
		Directory:  userService,
		Catalog:    catalog,
		Fees:       pricing.NewFeeSchedule(nil, pricing.Fees{ServicePercent: decimal.RequireFromString("0.10"), FixedFee: d(5)}),
		Transactor: NewMemoryTransactor(writes),
		Locker:     NewMemoryLocker(),
		Reads:      stores,
	}, Options{MaxTicketsPerTransaction: 6})

	return &fixture{
		svc:     svc,
		users:   userService,
		events:  eventService,
		venues:  venueService,
		stores:  stores,
		eventID: event.ID,
		locID:   loc.ID,
	}
}

func (f *fixture) balance(t *testing.T, login string) decimal.Decimal {
	t.Helper()
	b, err := f.users.GetBalance(context.Background(), login)
	require.NoError(t, err)
	return b
}

func (f *fixture) available(t *testing.T) int {
	t.Helper()
	n, err := f.venues.Availability(context.Background(), f.locID)
	require.NoError(t, err)
	return n
}

func (f *fixture) buy(t *testing.T, buyer string, qty int) []*tickets.Ticket {
	t.Helper()
	res, err := f.svc.BuyPrimary(context.Background(), PurchaseInput{
		Buyer:      buyer,
		EventID:    f.eventID,
		LocalityID: f.locID,
		Quantity:   qty,
	})
	require.NoError(t, err)
	return res.Tickets
}

func TestBuyPrimary_ChargesFeesAndConsumesSeats(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.BuyPrimary(context.Background(), PurchaseInput{
		Buyer:      "seller",
		EventID:    f.eventID,
		LocalityID: f.locID,
		Quantity:   2,
	})
	require.NoError(t, err)

	assert.True(t, d(200).Equal(res.Breakdown.Subtotal))
	assert.True(t, d(20).Equal(res.Breakdown.ServiceFee))
	assert.True(t, d(10).Equal(res.Breakdown.IssuanceFees))
	assert.True(t, d(230).Equal(res.Purchase.Total))
	assert.Equal(t, purchases.KindPrimary, res.Purchase.Kind)
	assert.Len(t, res.Purchase.TicketIDs, 2)

	assert.True(t, d(770).Equal(f.balance(t, "seller")))
	assert.Equal(t, 98, f.available(t))

	held, err := f.svc.HoldingsOf(context.Background(), "seller")
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "seller", held[0].HolderLogin)
}

func TestBuyPrimary_FailuresLeaveNothingBehind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	box, err := f.venues.AddLocality(ctx, "org", f.eventID, venues.LocalityInput{Name: "Palco", Capacity: 1, BasePrice: d(10)})
	require.NoError(t, err)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "ana", EventID: f.eventID, LocalityID: box.ID, Quantity: 2})
	assert.ErrorIs(t, err, venues.ErrInsufficientAvailability)
	assert.ErrorIs(t, err, domainerr.ErrStateConflict)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "poor", EventID: f.eventID, LocalityID: f.locID, Quantity: 1})
	assert.ErrorIs(t, err, pricing.ErrInsufficientFunds)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "ana", EventID: f.eventID, LocalityID: f.locID, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "admin", EventID: f.eventID, LocalityID: f.locID, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotCustomer)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "ana", EventID: f.eventID, LocalityID: f.locID, Quantity: 7})
	assert.ErrorIs(t, err, pricing.ErrPurchaseCapExceeded)

	assert.True(t, d(500).Equal(f.balance(t, "ana")))
	assert.True(t, d(50).Equal(f.balance(t, "poor")))
	assert.Equal(t, 100, f.available(t))
	n, err := f.venues.Availability(ctx, box.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	held, err := f.svc.HoldingsOf(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestBuyPrimary_InactiveEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.events.CancelEvent(ctx, f.eventID, "weather")
	require.NoError(t, err)

	_, err = f.svc.BuyPrimary(ctx, PurchaseInput{Buyer: "ana", EventID: f.eventID, LocalityID: f.locID, Quantity: 1})
	assert.ErrorIs(t, err, ErrEventNotActive)
	assert.Equal(t, 100, f.available(t))
}

type failingPurchases struct {
	purchases.Repository
}

func (failingPurchases) Create(context.Context, *purchases.Purchase) error {
	return errors.New("disk full")
}

func TestBuyPrimary_RollsBackWhenUnitOfWorkFails(t *testing.T) {
	f := newFixture(t, func(s *Stores) {
		s.Purchases = failingPurchases{Repository: s.Purchases}
	})

	_, err := f.svc.BuyPrimary(context.Background(), PurchaseInput{Buyer: "ana", EventID: f.eventID, LocalityID: f.locID, Quantity: 2})
	require.Error(t, err)

	assert.True(t, d(500).Equal(f.balance(t, "ana")))
	assert.Equal(t, 100, f.available(t))
	held, err := f.svc.HoldingsOf(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestBuyPrimary_Bundles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.BuyPrimary(ctx, PurchaseInput{
		Buyer:      "seller",
		EventID:    f.eventID,
		LocalityID: f.locID,
		Quantity:   3,
		Kind:       tickets.KindDiscountBundle,
	})
	require.NoError(t, err)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, 3, res.Tickets[0].Bundle.Count)
	assert.True(t, d(270).Equal(res.Tickets[0].BasePrice), "locality bundle discount applies, got %s", res.Tickets[0].BasePrice)
	assert.Equal(t, 97, f.available(t))

	res, err = f.svc.BuyPrimary(ctx, PurchaseInput{
		Buyer:      "seller",
		EventID:    f.eventID,
		LocalityID: f.locID,
		Quantity:   4,
		Kind:       tickets.KindPremiumBundle,
		Benefits:   []string{"backstage"},
	})
	require.NoError(t, err)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, 96, f.available(t), "a premium bundle takes one seat")
}

func TestPreAllocate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.PreAllocate(ctx, "other-org", f.locID, 2, d(0))
	assert.ErrorIs(t, err, ErrNotEventOrganizer)

	res, err := f.svc.PreAllocate(ctx, "org", f.locID, 5, d(0))
	require.NoError(t, err)
	assert.Len(t, res.Tickets, 5)
	assert.Equal(t, purchases.KindPreallocation, res.Purchase.Kind)
	assert.True(t, res.Purchase.Total.IsZero())
	assert.Equal(t, 95, f.available(t))

	held, err := f.svc.HoldingsOf(ctx, "org")
	require.NoError(t, err)
	assert.Len(t, held, 5)
}

func TestListForResale_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]

	_, err := f.svc.ListForResale(ctx, "ana", ticket.ID, d(150))
	assert.ErrorIs(t, err, resale.ErrNotOwner)

	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)
	assert.True(t, l.Active)

	_, err = f.svc.ListForResale(ctx, "seller", ticket.ID, d(140))
	assert.ErrorIs(t, err, resale.ErrAlreadyListed)

	active, err := f.svc.QueryActiveListings(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, l.ID, active[0].ID)
}

func TestBuyResale_PaysSellerInFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)
	sellerBefore := f.balance(t, "seller")

	_, err = f.svc.BuyResale(ctx, "seller", l.ID)
	assert.ErrorIs(t, err, ErrOwnListing)

	res, err := f.svc.BuyResale(ctx, "ana", l.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", res.Ticket.HolderLogin)
	assert.False(t, res.Listing.Active)
	assert.Equal(t, resale.ReasonSold, res.Listing.DeactivationReason)
	assert.Equal(t, purchases.KindResale, res.Purchase.Kind)
	assert.Equal(t, "seller", res.Purchase.SellerLogin)

	assert.True(t, d(350).Equal(f.balance(t, "ana")))
	assert.True(t, sellerBefore.Add(d(150)).Equal(f.balance(t, "seller")))

	_, err = f.svc.BuyResale(ctx, "bob", l.ID)
	assert.ErrorIs(t, err, resale.ErrListingInactive)
	assert.True(t, d(500).Equal(f.balance(t, "bob")))
}

func TestAcceptCounteroffer_SellsAtOfferedPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)
	sellerBefore := f.balance(t, "seller")

	c, err := f.svc.CreateCounteroffer(ctx, "ana", l.ID, d(120))
	require.NoError(t, err)
	c2, err := f.svc.CreateCounteroffer(ctx, "bob", l.ID, d(110))
	require.NoError(t, err)

	_, err = f.svc.AcceptCounteroffer(ctx, "ana", c.ID)
	assert.ErrorIs(t, err, counteroffers.ErrNotSeller)

	res, err := f.svc.AcceptCounteroffer(ctx, "seller", c.ID)
	require.NoError(t, err)
	assert.Equal(t, counteroffers.StatusAccepted, res.Resolution.Accepted.Status)
	require.Len(t, res.Resolution.Rejected, 1)
	assert.Equal(t, c2.ID, res.Resolution.Rejected[0].ID)
	assert.False(t, res.Listing.Active)
	assert.Equal(t, resale.ReasonCounterofferAccepted, res.Listing.DeactivationReason)
	assert.Equal(t, purchases.KindCounteroffer, res.Purchase.Kind)

	held, err := f.stores.Tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", held.HolderLogin)

	assert.True(t, d(380).Equal(f.balance(t, "ana")))
	assert.True(t, d(500).Equal(f.balance(t, "bob")))
	assert.True(t, sellerBefore.Add(d(120)).Equal(f.balance(t, "seller")))

	stored, err := f.stores.Offers.Get(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, counteroffers.StatusRejected, stored.Status)

	_, err = f.svc.AcceptCounteroffer(ctx, "seller", c2.ID)
	assert.ErrorIs(t, err, domainerr.ErrStateConflict)
}

// failingPurchasesOfKind refuses to store purchases of one kind
type failingPurchasesOfKind struct {
	purchases.Repository
	kind purchases.Kind
}

func (r failingPurchasesOfKind) Create(ctx context.Context, p *purchases.Purchase) error {
	if p.Kind == r.kind {
		return errors.New("disk full")
	}
	return r.Repository.Create(ctx, p)
}

func TestAcceptCounteroffer_RollsBackWhenUnitOfWorkFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(s *Stores) {
		s.Purchases = failingPurchasesOfKind{Repository: s.Purchases, kind: purchases.KindCounteroffer}
	})
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)
	sellerBefore := f.balance(t, "seller")

	c, err := f.svc.CreateCounteroffer(ctx, "ana", l.ID, d(120))
	require.NoError(t, err)
	c2, err := f.svc.CreateCounteroffer(ctx, "bob", l.ID, d(110))
	require.NoError(t, err)

	_, err = f.svc.AcceptCounteroffer(ctx, "seller", c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	for _, id := range []string{c.ID, c2.ID} {
		stored, err := f.stores.Offers.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, counteroffers.StatusPending, stored.Status, id)
	}

	listing, err := f.stores.Listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.Empty(t, listing.DeactivationReason)

	held, err := f.stores.Tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "seller", held.HolderLogin)

	assert.True(t, d(500).Equal(f.balance(t, "ana")))
	assert.True(t, d(500).Equal(f.balance(t, "bob")))
	assert.True(t, sellerBefore.Equal(f.balance(t, "seller")))

	bought, err := f.stores.Purchases.List(ctx, purchases.ListQuery{BuyerLogin: "ana"})
	require.NoError(t, err)
	assert.Empty(t, bought)

	// the offers are still open for the seller to resolve
	_, err = f.svc.RejectCounteroffer(ctx, "seller", c2.ID)
	require.NoError(t, err)
}

func TestMemoryTransactor_UndoesListingOfferAndPurchaseWrites(t *testing.T) {
	ctx := context.Background()
	stores := Stores{
		Tickets:   tickets.NewMemoryRepository(),
		Listings:  resale.NewMemoryRepository(),
		Offers:    counteroffers.NewMemoryRepository(),
		Purchases: purchases.NewMemoryRepository(),
		Wallets:   users.NewMemoryRepository(),
	}
	tx := NewMemoryTransactor(stores)

	require.NoError(t, stores.Purchases.Create(ctx, &purchases.Purchase{
		ID: "p-0", EventID: "ev-1", Kind: purchases.KindPrimary, Status: purchases.StatusApproved,
	}))

	err := tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		require.NoError(t, st.Listings.Create(ctx, &resale.Listing{ID: "l-1", TicketID: "t-1", Active: true}))
		require.NoError(t, st.Offers.Create(ctx, &counteroffers.Counteroffer{ID: "c-1", ListingID: "l-1", BuyerLogin: "ana", Status: counteroffers.StatusPending}))
		require.NoError(t, st.Purchases.Create(ctx, &purchases.Purchase{ID: "p-1", EventID: "ev-1", Kind: purchases.KindPrimary}))
		require.NoError(t, st.Purchases.CreateRefunds(ctx, []purchases.Refund{{ID: "r-1", EventID: "ev-1"}}))
		_, err := st.Purchases.MarkRefunded(ctx, "ev-1", time.Now())
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	_, err = stores.Listings.Get(ctx, "l-1")
	assert.ErrorIs(t, err, resale.ErrListingNotFound)
	_, err = stores.Offers.Get(ctx, "c-1")
	assert.ErrorIs(t, err, counteroffers.ErrCounterofferNotFound)
	_, err = stores.Purchases.Get(ctx, "p-1")
	assert.ErrorIs(t, err, purchases.ErrPurchaseNotFound)
	refunds, err := stores.Purchases.ListRefunds(ctx, "ev-1")
	require.NoError(t, err)
	assert.Empty(t, refunds)

	p0, err := stores.Purchases.Get(ctx, "p-0")
	require.NoError(t, err)
	assert.Equal(t, purchases.StatusApproved, p0.Status)
	assert.Nil(t, p0.RefundedAt)
}

func TestMemoryTransactor_ReportsCreditThatCannotBeTakenBack(t *testing.T) {
	ctx := context.Background()
	wallets := users.NewMemoryRepository()
	require.NoError(t, wallets.Create(ctx, &users.User{Login: "ana", Role: users.RoleBuyer}, &users.Wallet{Login: "ana"}))
	j := &journal{}
	w := &journaledWallets{Repository: wallets, journal: j}

	require.NoError(t, w.Credit(ctx, "ana", d(50)))
	ok, err := wallets.Debit(ctx, "ana", d(50))
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, j.undo, 1)
	err = j.undo[0](ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana")
}

func TestCounteroffers_ListingAndRejecting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)

	c, err := f.svc.CreateCounteroffer(ctx, "ana", l.ID, d(90))
	require.NoError(t, err)

	_, err = f.svc.ListCounteroffers(ctx, "ana", l.ID)
	assert.ErrorIs(t, err, resale.ErrNotSeller)

	list, err := f.svc.ListCounteroffers(ctx, "seller", l.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	rejected, err := f.svc.RejectCounteroffer(ctx, "seller", c.ID)
	require.NoError(t, err)
	assert.Equal(t, counteroffers.StatusRejected, rejected.Status)

	mine, err := f.svc.MyCounteroffers(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, counteroffers.StatusRejected, mine[0].Status)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)
	offer, err := f.svc.CreateCounteroffer(ctx, "bob", l.ID, d(100))
	require.NoError(t, err)

	_, err = f.svc.Transfer(ctx, TransferInput{TicketID: ticket.ID, From: "seller", Password: "nope", To: "ana"})
	assert.ErrorIs(t, err, ErrWrongCredentials)
	_, err = f.svc.Transfer(ctx, TransferInput{TicketID: ticket.ID, From: "seller", Password: "pw", To: "seller"})
	assert.ErrorIs(t, err, ErrSameHolder)
	_, err = f.svc.Transfer(ctx, TransferInput{TicketID: ticket.ID, From: "seller", Password: "pw", To: "admin"})
	assert.ErrorIs(t, err, ErrRecipientInvalid)
	_, err = f.svc.Transfer(ctx, TransferInput{TicketID: ticket.ID, From: "ana", Password: "pw", To: "bob"})
	assert.ErrorIs(t, err, resale.ErrNotOwner)

	moved, err := f.svc.Transfer(ctx, TransferInput{TicketID: ticket.ID, From: "seller", Password: "pw", To: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana", moved.HolderLogin)

	closed, err := f.stores.Listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	assert.Equal(t, resale.ReasonTicketTransferred, closed.DeactivationReason)

	stored, err := f.stores.Offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, counteroffers.StatusRejected, stored.Status)
}

func TestRedeem_ClosesListingOnceNoLongerTransferable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.BuyPrimary(ctx, PurchaseInput{
		Buyer:      "seller",
		EventID:    f.eventID,
		LocalityID: f.locID,
		Quantity:   2,
		Kind:       tickets.KindDiscountBundle,
	})
	require.NoError(t, err)
	bundle := res.Tickets[0]
	l, err := f.svc.ListForResale(ctx, "seller", bundle.ID, d(150))
	require.NoError(t, err)

	_, err = f.svc.Redeem(ctx, "ana", bundle.ID, nil)
	assert.ErrorIs(t, err, resale.ErrNotOwner)

	first := 0
	used, err := f.svc.Redeem(ctx, "seller", bundle.ID, &first)
	require.NoError(t, err)
	assert.True(t, used.Bundle.Items[0].Used)
	assert.False(t, used.Used)

	closed, err := f.stores.Listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	assert.Equal(t, resale.ReasonTicketInvalidated, closed.DeactivationReason)

	_, err = f.svc.Redeem(ctx, "seller", bundle.ID, &first)
	assert.ErrorIs(t, err, tickets.ErrTicketNotValid)

	used, err = f.svc.Redeem(ctx, "seller", bundle.ID, nil)
	require.NoError(t, err)
	assert.True(t, used.Used)

	_, err = f.svc.Redeem(ctx, "seller", bundle.ID, nil)
	assert.ErrorIs(t, err, tickets.ErrTicketNotValid)
}

func TestComputeRefund_Quotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]

	hardship, err := f.svc.ComputeRefund(ctx, ticket.ID, false)
	require.NoError(t, err)
	assert.True(t, d(100).Equal(hardship.Amount))

	cancellation, err := f.svc.ComputeRefund(ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.True(t, d(95).Equal(cancellation.Amount))
	assert.True(t, d(5).Equal(cancellation.FixedFee))
}

func TestRefundHardship(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "ana", 1)[0]
	before := f.balance(t, "ana")

	_, err := f.svc.RefundHardship(ctx, ticket.ID, "bob")
	assert.ErrorIs(t, err, resale.ErrNotOwner)

	refund, err := f.svc.RefundHardship(ctx, ticket.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, purchases.RefundHardship, refund.Reason)
	assert.True(t, d(100).Equal(refund.Amount))
	assert.True(t, before.Add(d(100)).Equal(f.balance(t, "ana")))

	stored, err := f.stores.Tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)

	_, err = f.svc.RefundHardship(ctx, ticket.ID, "ana")
	assert.ErrorIs(t, err, tickets.ErrTicketNotValid)
}

func TestRefundEventCancellation_RefundsCurrentHolders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sold := f.buy(t, "seller", 2)
	f.buy(t, "bob", 1)
	l, err := f.svc.ListForResale(ctx, "seller", sold[0].ID, d(150))
	require.NoError(t, err)
	_, err = f.svc.CreateCounteroffer(ctx, "bob", l.ID, d(120))
	require.NoError(t, err)
	_, err = f.svc.Transfer(ctx, TransferInput{TicketID: sold[1].ID, From: "seller", Password: "pw", To: "ana"})
	require.NoError(t, err)

	sellerBefore := f.balance(t, "seller")
	anaBefore := f.balance(t, "ana")
	bobBefore := f.balance(t, "bob")

	_, err = f.events.CancelEvent(ctx, f.eventID, "venue flooded")
	require.NoError(t, err)

	summary, err := f.svc.RefundEventCancellation(ctx, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TicketsRefunded)
	assert.True(t, d(285).Equal(summary.TotalRefunded))
	assert.Equal(t, 1, summary.ListingsClosed)
	assert.Equal(t, int64(2), summary.PurchasesRefunded)

	assert.True(t, sellerBefore.Add(d(95)).Equal(f.balance(t, "seller")))
	assert.True(t, anaBefore.Add(d(95)).Equal(f.balance(t, "ana")), "the current holder gets the refund")
	assert.True(t, bobBefore.Add(d(95)).Equal(f.balance(t, "bob")))

	closed, err := f.stores.Listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	pending, err := f.svc.MyCounteroffers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, counteroffers.StatusRejected, pending[0].Status)

	refunds, err := f.stores.Purchases.ListRefunds(ctx, f.eventID)
	require.NoError(t, err)
	assert.Len(t, refunds, 3)

	again, err := f.svc.RefundEventCancellation(ctx, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.TicketsRefunded)
	assert.True(t, again.TotalRefunded.IsZero())
	assert.True(t, sellerBefore.Add(d(95)).Equal(f.balance(t, "seller")))
}

func TestRemoveListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)

	_, err = f.svc.RemoveListing(ctx, l.ID, "ana", false)
	assert.ErrorIs(t, err, resale.ErrNotSeller)

	removed, err := f.svc.RemoveListing(ctx, l.ID, "admin", true)
	require.NoError(t, err)
	assert.False(t, removed.Active)
	assert.Equal(t, resale.ReasonRemovedByAdmin, removed.DeactivationReason)

	again, err := f.svc.RemoveListing(ctx, l.ID, "seller", false)
	require.NoError(t, err)
	assert.Equal(t, resale.ReasonRemovedByAdmin, again.DeactivationReason)

	mine, err := f.svc.MyListings(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	active, err := f.svc.QueryActiveListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestQueryActiveListings_RechecksCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.buy(t, "seller", 1)[0]
	l, err := f.svc.ListForResale(ctx, "seller", ticket.ID, d(150))
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	svc := f.svc.(*service)
	svc.cache = cache.NewService(db)
	snapshot, err := json.Marshal([]resale.Listing{*l})
	require.NoError(t, err)

	mock.ExpectGet(constants.CACHE_KEY_LISTINGS_ACTIVE).SetVal(string(snapshot))
	active, err := f.svc.QueryActiveListings(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, l.ID, active[0].ID)

	// the snapshot is still cached when the show starts
	svc.now = func() time.Time { return ticket.ShowTime.Add(time.Minute) }
	mock.ExpectGet(constants.CACHE_KEY_LISTINGS_ACTIVE).SetVal(string(snapshot))
	active, err = f.svc.QueryActiveListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, mock.ExpectationsWereMet())
}
