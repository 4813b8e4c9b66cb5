package marketplace

import (
	"context"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/events"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"

	"github.com/shopspring/decimal"
)

// Directory is the user directory: identities, credentials and balances
type Directory interface {
	Resolve(ctx context.Context, login string) (users.Principal, error)
	ValidateCredentials(ctx context.Context, login, password string) (bool, error)
	GetBalance(ctx context.Context, login string) (decimal.Decimal, error)
}

// Catalog is the read side of events and venues
type Catalog interface {
	IsEventActive(ctx context.Context, eventID string) (bool, error)
	EventInfo(ctx context.Context, eventID string) (*events.Event, error)
	Locality(ctx context.Context, localityID string) (*venues.Locality, error)
	LocalityAvailability(ctx context.Context, localityID string) (int, error)
	ActiveDiscountForLocality(ctx context.Context, localityID string) (decimal.Decimal, bool, error)
}

// Inventory consumes locality seats
type Inventory interface {
	DecrementLocalityAvailability(ctx context.Context, localityID string, qty int) error
}

type FeeSource interface {
	Current() pricing.Fees
}

// Stores are the repositories one unit of work writes through
type Stores struct {
	Tickets   tickets.Repository
	Listings  resale.Repository
	Offers    counteroffers.Repository
	Purchases purchases.Repository
	Wallets   users.Repository
	Inventory Inventory
}

// Transactor runs fn as one unit: either every write through the given
// Stores lands or none does
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// Locker acquires every key in the order given and returns the release func
type Locker interface {
	Acquire(ctx context.Context, keys []string) (func(), error)
}
