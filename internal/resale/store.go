package resale

import (
	"context"
	"errors"
	"time"

	"boletamaster/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketLookup resolves the ticket behind a listing
type TicketLookup interface {
	Get(ctx context.Context, id string) (*tickets.Ticket, error)
}

// Store applies the listing rules on top of a Repository. It never touches
// ticket ownership.
type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// WithClock is used by tests that need a fixed "now"
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateListing(ctx context.Context, t *tickets.Ticket, seller string, price decimal.Decimal) (*Listing, error) {
	price = price.Round(2)
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if t.HolderLogin != seller {
		return nil, ErrNotOwner
	}
	// premium bundles get their own error even though they are never transferable
	if t.Kind == tickets.KindPremiumBundle {
		return nil, ErrInvalidTicketType
	}
	if !t.IsTransferableAt(s.now()) {
		return nil, ErrNotTransferable
	}
	if _, err := s.repo.FindActiveByTicket(ctx, t.ID); err == nil {
		return nil, ErrAlreadyListed
	} else if !errors.Is(err, ErrListingNotFound) {
		return nil, err
	}

	listing := &Listing{
		ID:          uuid.NewString(),
		TicketID:    t.ID,
		EventID:     t.EventID,
		SellerLogin: seller,
		Price:       price,
		CreatedAt:   s.now(),
		Active:      true,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Deactivate is idempotent; an inactive listing is left untouched
func (s *Store) Deactivate(ctx context.Context, l *Listing, reason DeactivationReason) error {
	if !l.Active {
		return nil
	}
	now := s.now()
	l.Active = false
	l.DeactivatedAt = &now
	l.DeactivationReason = reason
	return s.repo.Update(ctx, l)
}

// DeactivateForTicket closes the active listing of a ticket, if any
func (s *Store) DeactivateForTicket(ctx context.Context, ticketID string, reason DeactivationReason) (*Listing, error) {
	l, err := s.repo.FindActiveByTicket(ctx, ticketID)
	if errors.Is(err, ErrListingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.Deactivate(ctx, l, reason); err != nil {
		return nil, err
	}
	return l, nil
}

// QueryActive returns active listings whose ticket can still be resold.
// Stale listings stay flagged active in storage but are filtered out here.
func (s *Store) QueryActive(ctx context.Context, lookup TicketLookup) ([]Listing, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.Resellable(ctx, lookup, active)
}

// Resellable keeps the listings whose ticket can be resold at the store's
// current time. It is applied again to snapshots read back from a cache.
func (s *Store) Resellable(ctx context.Context, lookup TicketLookup, listings []Listing) ([]Listing, error) {
	now := s.now()
	out := make([]Listing, 0, len(listings))
	for i := range listings {
		t, err := lookup.Get(ctx, listings[i].TicketID)
		if errors.Is(err, tickets.ErrTicketNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if CanResell(&listings[i], t, now) {
			out = append(out, listings[i])
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Listing, error) {
	return s.repo.Get(ctx, id)
}

func (s *Store) ListBySeller(ctx context.Context, login string) ([]Listing, error) {
	return s.repo.ListBySeller(ctx, login)
}
