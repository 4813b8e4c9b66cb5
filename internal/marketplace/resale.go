package marketplace

import (
	"context"
	"errors"
	"time"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/notifications"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/shopspring/decimal"
)

// Transfer hands a ticket to another customer for free. Paid transfers go
// through BuyResale.
func (s *service) Transfer(ctx context.Context, in TransferInput) (t *tickets.Ticket, err error) {
	defer metrics.ObserveOperation("transfer", time.Now(), &err)

	ok, err := s.directory.ValidateCredentials(ctx, in.From, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongCredentials
	}
	if in.From == in.To {
		return nil, ErrSameHolder
	}
	if _, err := s.customer(ctx, in.To); err != nil {
		if errors.Is(err, ErrNotCustomer) {
			return nil, ErrRecipientInvalid
		}
		return nil, err
	}

	release, listing, err := s.lockTicket(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err = s.reads.Tickets.Get(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if t.HolderLogin != in.From {
		return nil, resale.ErrNotOwner
	}
	if !t.IsValidAt(now) {
		return nil, tickets.ErrTicketNotValid
	}
	if !t.IsTransferableAt(now) {
		return nil, resale.ErrNotTransferable
	}

	var rejected []counteroffers.Counteroffer
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		t.SetHolder(in.To)
		if err := st.Tickets.Save(ctx, t); err != nil {
			return err
		}
		if listing == nil {
			return nil
		}
		var err error
		rejected, err = s.closeListing(ctx, st, listing, resale.ReasonTicketTransferred)
		return err
	})
	if err != nil {
		return nil, err
	}
	if listing != nil {
		s.invalidateListings(ctx)
	}

	logger.GetDefault().LogTicketTransferred(ctx, t.ID, in.From, in.To)
	evt := notifications.NewEvent(notifications.EventTicketTransferred, in.From, append([]string{in.To}, buyersOf(rejected)...)...)
	evt.EventID = t.EventID
	evt.TicketID = t.ID
	s.publish(ctx, evt)

	return t, nil
}

func (s *service) ListForResale(ctx context.Context, seller, ticketID string, price decimal.Decimal) (l *resale.Listing, err error) {
	defer metrics.ObserveOperation("list_for_resale", time.Now(), &err)

	release, _, err := s.lockTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := s.reads.Tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		l, err = s.listingStore(st.Listings).CreateListing(ctx, t, seller, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	logger.GetDefault().LogListingCreated(ctx, l.ID, t.ID, seller, l.Price.StringFixed(2))
	evt := notifications.NewEvent(notifications.EventListingCreated, seller)
	evt.EventID = l.EventID
	evt.TicketID = t.ID
	evt.ListingID = l.ID
	evt.Amount = l.Price.StringFixed(2)
	s.publish(ctx, evt)

	return l, nil
}

// RemoveListing withdraws a listing (seller) or takes it down (admin).
// Removing an inactive listing is a no-op.
func (s *service) RemoveListing(ctx context.Context, listingID, caller string, isAdmin bool) (l *resale.Listing, err error) {
	defer metrics.ObserveOperation("remove_listing", time.Now(), &err)

	release, l, err := s.lockListing(ctx, listingID, false)
	if err != nil {
		return nil, err
	}
	defer release()

	if !isAdmin && caller != l.SellerLogin {
		return nil, resale.ErrNotSeller
	}
	if !l.Active {
		return l, nil
	}
	reason := resale.ReasonWithdrawn
	if caller != l.SellerLogin {
		reason = resale.ReasonRemovedByAdmin
	}

	var rejected []counteroffers.Counteroffer
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		rejected, err = s.closeListing(ctx, st, l, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	logger.GetDefault().InfoWithContext(ctx, "Listing Removed", map[string]interface{}{
		"listing_id":    l.ID,
		"by":            caller,
		"reason":        string(reason),
		"auto_rejected": len(rejected),
	})
	evt := notifications.NewEvent(notifications.EventListingRemoved, caller, append([]string{l.SellerLogin}, buyersOf(rejected)...)...)
	evt.EventID = l.EventID
	evt.TicketID = l.TicketID
	evt.ListingID = l.ID
	evt.Details = map[string]string{"reason": string(reason)}
	s.publish(ctx, evt)

	return l, nil
}

// BuyResale pays the full asking price to the seller; the platform takes
// no cut on resale
func (s *service) BuyResale(ctx context.Context, buyer, listingID string) (res *ResaleResult, err error) {
	defer metrics.ObserveOperation("buy_resale", time.Now(), &err)

	if _, err := s.customer(ctx, buyer); err != nil {
		return nil, err
	}

	release, l, err := s.lockListing(ctx, listingID, true)
	if err != nil {
		return nil, err
	}
	defer release()

	if !l.Active {
		return nil, resale.ErrListingInactive
	}
	if l.SellerLogin == buyer {
		return nil, ErrOwnListing
	}
	t, err := s.reads.Tickets.Get(ctx, l.TicketID)
	if err != nil {
		return nil, err
	}
	if !resale.CanResell(l, t, s.now()) {
		return nil, ErrStaleListing
	}
	if err := s.ensureFunds(ctx, buyer, l.Price); err != nil {
		return nil, err
	}

	purchase, err := s.newPurchase(purchases.KindResale, buyer)
	if err != nil {
		return nil, err
	}
	fillSecondary(purchase, l, t, l.Price)

	var rejected []counteroffers.Counteroffer
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := s.engine(st.Wallets).ProcessBalancePurchase(ctx, buyer, l.Price); err != nil {
			return err
		}
		t.SetHolder(buyer)
		if err := st.Tickets.Save(ctx, t); err != nil {
			return err
		}
		var err error
		if rejected, err = s.closeListing(ctx, st, l, resale.ReasonSold); err != nil {
			return err
		}
		if err := st.Wallets.Credit(ctx, l.SellerLogin, l.Price); err != nil {
			return err
		}
		return st.Purchases.Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	metrics.TrackTicketsSold(string(purchases.KindResale), 1)
	logger.GetDefault().LogListingSold(ctx, l.ID, buyer, l.Price.StringFixed(2))
	evt := notifications.NewEvent(notifications.EventListingSold, buyer, append([]string{l.SellerLogin}, buyersOf(rejected)...)...)
	evt.EventID = l.EventID
	evt.TicketID = t.ID
	evt.ListingID = l.ID
	evt.PurchaseID = purchase.ID
	evt.Amount = l.Price.StringFixed(2)
	s.publish(ctx, evt)

	return &ResaleResult{Listing: l, Ticket: t, Purchase: purchase}, nil
}

// fillSecondary completes the purchase record of a resale or accepted
// counteroffer
func fillSecondary(p *purchases.Purchase, l *resale.Listing, t *tickets.Ticket, price decimal.Decimal) {
	p.SellerLogin = l.SellerLogin
	p.ListingID = l.ID
	p.EventID = t.EventID
	p.LocalityID = t.LocalityID
	p.TicketIDs = []string{t.ID}
	p.Subtotal = price
	p.ServiceFee = decimal.Zero
	p.IssuanceFees = decimal.Zero
	p.Total = price
}
