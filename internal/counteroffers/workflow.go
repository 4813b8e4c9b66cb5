package counteroffers

import (
	"context"
	"time"

	"boletamaster/internal/resale"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workflow is the per-listing negotiation state machine. Ticket ownership and
// balances are left to the caller, which runs Accept inside its transaction.
type Workflow struct {
	repo Repository
	now  func() time.Time
}

func NewWorkflow(repo Repository) *Workflow {
	return &Workflow{repo: repo, now: time.Now}
}

func (w *Workflow) Create(ctx context.Context, l *resale.Listing, buyer string, price decimal.Decimal) (*Counteroffer, error) {
	if !l.Active {
		return nil, resale.ErrListingInactive
	}
	// stored amounts have two decimals, so compare what would be stored
	price = price.Round(2)
	if !price.IsPositive() || price.GreaterThanOrEqual(l.Price) {
		return nil, ErrInvalidPrice
	}
	if buyer == l.SellerLogin {
		return nil, ErrOwnListing
	}

	pending, err := w.repo.ListByListing(ctx, l.ID, StatusPending)
	if err != nil {
		return nil, err
	}
	for _, o := range pending {
		if o.BuyerLogin == buyer {
			return nil, ErrDuplicatePending
		}
	}

	offer := &Counteroffer{
		ID:         uuid.NewString(),
		ListingID:  l.ID,
		BuyerLogin: buyer,
		Price:      price,
		Status:     StatusPending,
		CreatedAt:  w.now(),
	}
	if err := w.repo.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Accept marks offer accepted and every other pending offer on the listing
// rejected. The listing itself is deactivated by the caller in the same unit.
func (w *Workflow) Accept(ctx context.Context, l *resale.Listing, offer *Counteroffer, caller string) (*Resolution, error) {
	if err := CheckResolvable(l, offer, caller); err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, resale.ErrListingInactive
	}

	siblings, err := w.repo.ListByListing(ctx, l.ID, StatusPending)
	if err != nil {
		return nil, err
	}

	now := w.now()
	offer.Status = StatusAccepted
	offer.ResolvedAt = &now

	res := &Resolution{Accepted: offer}
	changed := []*Counteroffer{offer}
	for i := range siblings {
		if siblings[i].ID == offer.ID {
			continue
		}
		siblings[i].Status = StatusRejected
		siblings[i].ResolvedAt = &now
		res.Rejected = append(res.Rejected, siblings[i])
		changed = append(changed, &siblings[i])
	}

	if err := w.repo.UpdateAll(ctx, changed); err != nil {
		return nil, err
	}
	return res, nil
}

func (w *Workflow) Reject(ctx context.Context, l *resale.Listing, offer *Counteroffer, caller string) error {
	if err := CheckResolvable(l, offer, caller); err != nil {
		return err
	}
	now := w.now()
	offer.Status = StatusRejected
	offer.ResolvedAt = &now
	return w.repo.UpdateAll(ctx, []*Counteroffer{offer})
}

// RejectPending closes every pending offer on a listing that left the market
// some other way (direct sale, withdrawal, removal)
func (w *Workflow) RejectPending(ctx context.Context, listingID string) ([]Counteroffer, error) {
	pending, err := w.repo.ListByListing(ctx, listingID, StatusPending)
	if err != nil || len(pending) == 0 {
		return nil, err
	}
	now := w.now()
	changed := make([]*Counteroffer, len(pending))
	for i := range pending {
		pending[i].Status = StatusRejected
		pending[i].ResolvedAt = &now
		changed[i] = &pending[i]
	}
	if err := w.repo.UpdateAll(ctx, changed); err != nil {
		return nil, err
	}
	return pending, nil
}

func (w *Workflow) Get(ctx context.Context, id string) (*Counteroffer, error) {
	return w.repo.Get(ctx, id)
}

func (w *Workflow) ListForListing(ctx context.Context, listingID string) ([]Counteroffer, error) {
	return w.repo.ListByListing(ctx, listingID, "")
}

func (w *Workflow) ListByBuyer(ctx context.Context, login string) ([]Counteroffer, error) {
	return w.repo.ListByBuyer(ctx, login)
}

// CheckResolvable verifies that caller may accept or reject offer on l
func CheckResolvable(l *resale.Listing, offer *Counteroffer, caller string) error {
	if caller != l.SellerLogin {
		return ErrNotSeller
	}
	if offer.ListingID != l.ID {
		return ErrListingMismatch
	}
	if !offer.IsPending() {
		return ErrNotPending
	}
	return nil
}
