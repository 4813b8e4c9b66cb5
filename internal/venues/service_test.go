package venues

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"boletamaster/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	venues  Service
	events  events.Service
	eventID string
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	eventSvc := events.NewService(events.NewMemoryRepository())
	venueSvc := NewService(NewMemoryRepository(), eventSvc, nil)
	eventSvc.SetVenueChecker(venueSvc)

	venue, err := venueSvc.CreateVenue(ctx, "admin", VenueInput{Name: "Arena", Capacity: 100})
	require.NoError(t, err)
	event, err := eventSvc.CreateEvent(ctx, "org", events.CreateEventInput{
		Name: "Concert", VenueID: venue.ID, ShowTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	return fixture{venues: venueSvc, events: eventSvc, eventID: event.ID}
}

func TestSuggestAndApproveVenue(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	suggested, err := f.venues.SuggestVenue(ctx, "org", VenueInput{Name: "Club", Capacity: 50})
	require.NoError(t, err)
	assert.False(t, suggested.Approved)

	approved, err := f.venues.ListVenues(ctx, true)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	_, err = f.events.CreateEvent(ctx, "org", events.CreateEventInput{
		Name: "Early", VenueID: suggested.ID, ShowTime: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, events.ErrVenueNotApproved)

	_, err = f.venues.ApproveVenue(ctx, suggested.ID)
	require.NoError(t, err)
	_, err = f.venues.ApproveVenue(ctx, suggested.ID)
	assert.ErrorIs(t, err, ErrVenueAlreadyApproved)

	_, err = f.venues.SuggestVenue(ctx, "org", VenueInput{Name: "", Capacity: 10})
	assert.ErrorIs(t, err, ErrInvalidVenue)
}

func TestAddLocality_CapacityAndOwnership(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.venues.AddLocality(ctx, "intruder", f.eventID, LocalityInput{Name: "VIP", Capacity: 10, BasePrice: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrNotEventOrganizer)

	vip, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "VIP", Capacity: 60, BasePrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, 60, vip.Available)

	_, err = f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "General", Capacity: 41, BasePrice: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "General", Capacity: 40, BasePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidLocality)

	list, err := f.venues.ListLocalities(ctx, f.eventID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddLocality_BundleDiscountRange(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, bad := range []string{"1", "1.5", "-0.1"} {
		_, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{
			Name: "Box", Capacity: 5, BasePrice: decimal.NewFromInt(80), BundleDiscount: decimal.RequireFromString(bad),
		})
		assert.ErrorIs(t, err, ErrInvalidBundleDiscount, bad)
	}

	l, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{
		Name: "Box", Capacity: 5, BasePrice: decimal.NewFromInt(80), BundleDiscount: decimal.RequireFromString("0.15"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.15").Equal(l.BundleDiscount))

	got, err := f.venues.GetLocality(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.15").Equal(got.BundleDiscount))
}

func TestReserveRelease(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	l, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "VIP", Capacity: 5, BasePrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	require.NoError(t, f.venues.Reserve(ctx, l.ID, 3))
	assert.ErrorIs(t, f.venues.Reserve(ctx, l.ID, 3), ErrInsufficientAvailability)
	assert.ErrorIs(t, f.venues.Reserve(ctx, l.ID, 0), ErrInvalidQuantity)

	n, err := f.venues.Availability(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, f.venues.Release(ctx, l.ID, 3))
	assert.ErrorIs(t, f.venues.Release(ctx, l.ID, 1), ErrInsufficientAvailability, "cannot exceed capacity")
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	l, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "VIP", Capacity: 10, BasePrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.venues.Reserve(ctx, l.ID, 1) == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(10), ok)
}

func TestOffers_CombineMultiplicatively(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	l, err := f.venues.AddLocality(ctx, "org", f.eventID, LocalityInput{Name: "VIP", Capacity: 10, BasePrice: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, ok, err := f.venues.ActiveDiscountForLocality(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	window := OfferInput{StartsAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)}

	bad := window
	bad.Discount = decimal.RequireFromString("1.5")
	_, err = f.venues.CreateOffer(ctx, "org", l.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	inverted := OfferInput{Discount: decimal.RequireFromString("0.1"), StartsAt: now, ExpiresAt: now.Add(-time.Minute)}
	_, err = f.venues.CreateOffer(ctx, "org", l.ID, inverted)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	first := window
	first.Discount = decimal.RequireFromString("0.2")
	o1, err := f.venues.CreateOffer(ctx, "org", l.ID, first)
	require.NoError(t, err)

	second := window
	second.Discount = decimal.RequireFromString("0.5")
	_, err = f.venues.CreateOffer(ctx, "org", l.ID, second)
	require.NoError(t, err)

	future := OfferInput{Discount: decimal.RequireFromString("0.9"), StartsAt: now.Add(time.Hour), ExpiresAt: now.Add(2 * time.Hour)}
	_, err = f.venues.CreateOffer(ctx, "org", l.ID, future)
	require.NoError(t, err)

	d, ok, err := f.venues.ActiveDiscountForLocality(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("0.6")), "1 - 0.8*0.5, got %s", d)

	_, err = f.venues.DeactivateOffer(ctx, "org", o1.ID)
	require.NoError(t, err)
	d, _, err = f.venues.ActiveDiscountForLocality(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("0.5")))

	_, err = f.venues.DeactivateOffer(ctx, "intruder", o1.ID)
	assert.ErrorIs(t, err, ErrNotEventOrganizer)
}
