package marketplace

import (
	"context"

	"boletamaster/internal/events"
	"boletamaster/internal/venues"

	"github.com/shopspring/decimal"
)

// CatalogAdapter serves the Catalog and Inventory ports from the events and
// venues services
type CatalogAdapter struct {
	events events.Service
	venues venues.Service
}

func NewCatalogAdapter(eventService events.Service, venueService venues.Service) *CatalogAdapter {
	return &CatalogAdapter{events: eventService, venues: venueService}
}

func (a *CatalogAdapter) IsEventActive(ctx context.Context, eventID string) (bool, error) {
	return a.events.IsActive(ctx, eventID)
}

func (a *CatalogAdapter) EventInfo(ctx context.Context, eventID string) (*events.Event, error) {
	return a.events.GetEvent(ctx, eventID)
}

func (a *CatalogAdapter) Locality(ctx context.Context, localityID string) (*venues.Locality, error) {
	return a.venues.GetLocality(ctx, localityID)
}

func (a *CatalogAdapter) LocalityAvailability(ctx context.Context, localityID string) (int, error) {
	return a.venues.Availability(ctx, localityID)
}

func (a *CatalogAdapter) DecrementLocalityAvailability(ctx context.Context, localityID string, qty int) error {
	return a.venues.Reserve(ctx, localityID, qty)
}

// IncrementLocalityAvailability gives seats back, used to undo a decrement
func (a *CatalogAdapter) IncrementLocalityAvailability(ctx context.Context, localityID string, qty int) error {
	return a.venues.Release(ctx, localityID, qty)
}

func (a *CatalogAdapter) ActiveDiscountForLocality(ctx context.Context, localityID string) (decimal.Decimal, bool, error) {
	return a.venues.ActiveDiscountForLocality(ctx, localityID)
}
