package marketplace

import (
	"context"
	"time"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/notifications"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/shopspring/decimal"
)

func (s *service) CreateCounteroffer(ctx context.Context, buyer, listingID string, price decimal.Decimal) (offer *counteroffers.Counteroffer, err error) {
	defer metrics.ObserveOperation("create_counteroffer", time.Now(), &err)

	if _, err := s.customer(ctx, buyer); err != nil {
		return nil, err
	}

	release, l, err := s.lockListing(ctx, listingID, false)
	if err != nil {
		return nil, err
	}
	defer release()

	if l.Active {
		t, err := s.reads.Tickets.Get(ctx, l.TicketID)
		if err != nil {
			return nil, err
		}
		if !resale.CanResell(l, t, s.now()) {
			return nil, ErrStaleListing
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		offer, err = counteroffers.NewWorkflow(st.Offers).Create(ctx, l, buyer, price)
		return err
	})
	if err != nil {
		return nil, err
	}

	evt := notifications.NewEvent(notifications.EventCounterofferCreated, buyer, l.SellerLogin)
	evt.EventID = l.EventID
	evt.TicketID = l.TicketID
	evt.ListingID = l.ID
	evt.CounterofferID = offer.ID
	evt.Amount = offer.Price.StringFixed(2)
	s.publish(ctx, evt)

	return offer, nil
}

// AcceptCounteroffer sells the ticket at the offered price. The transfer,
// both wallet movements, the offer resolutions and the listing deactivation
// commit as one unit.
func (s *service) AcceptCounteroffer(ctx context.Context, seller, counterofferID string) (res *AcceptResult, err error) {
	defer metrics.ObserveOperation("accept_counteroffer", time.Now(), &err)

	offer, err := s.reads.Offers.Get(ctx, counterofferID)
	if err != nil {
		return nil, err
	}
	release, l, err := s.lockListing(ctx, offer.ListingID, true)
	if err != nil {
		return nil, err
	}
	defer release()

	if offer, err = s.reads.Offers.Get(ctx, counterofferID); err != nil {
		return nil, err
	}
	if err := counteroffers.CheckResolvable(l, offer, seller); err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, resale.ErrListingInactive
	}
	t, err := s.reads.Tickets.Get(ctx, l.TicketID)
	if err != nil {
		return nil, err
	}
	if !resale.CanResell(l, t, s.now()) {
		return nil, ErrStaleListing
	}
	buyer := offer.BuyerLogin
	if err := s.ensureFunds(ctx, buyer, offer.Price); err != nil {
		return nil, err
	}

	purchase, err := s.newPurchase(purchases.KindCounteroffer, buyer)
	if err != nil {
		return nil, err
	}
	fillSecondary(purchase, l, t, offer.Price)

	var resolution *counteroffers.Resolution
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := s.engine(st.Wallets).ProcessBalancePurchase(ctx, buyer, offer.Price); err != nil {
			return err
		}
		var err error
		if resolution, err = counteroffers.NewWorkflow(st.Offers).Accept(ctx, l, offer, seller); err != nil {
			return err
		}
		t.SetHolder(buyer)
		if err := st.Tickets.Save(ctx, t); err != nil {
			return err
		}
		if err := s.listingStore(st.Listings).Deactivate(ctx, l, resale.ReasonCounterofferAccepted); err != nil {
			return err
		}
		if err := st.Wallets.Credit(ctx, seller, offer.Price); err != nil {
			return err
		}
		return st.Purchases.Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	metrics.TrackTicketsSold(string(purchases.KindCounteroffer), 1)
	logger.GetDefault().LogCounterofferResolved(ctx, offer.ID, l.ID, string(counteroffers.StatusAccepted), len(resolution.Rejected))
	evt := notifications.NewEvent(notifications.EventCounterofferAccepted, seller, append([]string{buyer}, buyersOf(resolution.Rejected)...)...)
	evt.EventID = l.EventID
	evt.TicketID = t.ID
	evt.ListingID = l.ID
	evt.CounterofferID = offer.ID
	evt.PurchaseID = purchase.ID
	evt.Amount = offer.Price.StringFixed(2)
	s.publish(ctx, evt)

	return &AcceptResult{Resolution: resolution, Listing: l, Ticket: t, Purchase: purchase}, nil
}

func (s *service) RejectCounteroffer(ctx context.Context, seller, counterofferID string) (offer *counteroffers.Counteroffer, err error) {
	defer metrics.ObserveOperation("reject_counteroffer", time.Now(), &err)

	offer, err = s.reads.Offers.Get(ctx, counterofferID)
	if err != nil {
		return nil, err
	}
	release, l, err := s.lockListing(ctx, offer.ListingID, false)
	if err != nil {
		return nil, err
	}
	defer release()

	if offer, err = s.reads.Offers.Get(ctx, counterofferID); err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		return counteroffers.NewWorkflow(st.Offers).Reject(ctx, l, offer, seller)
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogCounterofferResolved(ctx, offer.ID, l.ID, string(counteroffers.StatusRejected), 0)
	evt := notifications.NewEvent(notifications.EventCounterofferRejected, seller, offer.BuyerLogin)
	evt.EventID = l.EventID
	evt.ListingID = l.ID
	evt.CounterofferID = offer.ID
	s.publish(ctx, evt)

	return offer, nil
}

// ListCounteroffers shows a seller every offer made on one of their listings
func (s *service) ListCounteroffers(ctx context.Context, seller, listingID string) ([]counteroffers.Counteroffer, error) {
	l, err := s.reads.Listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.SellerLogin != seller {
		return nil, resale.ErrNotSeller
	}
	return counteroffers.NewWorkflow(s.reads.Offers).ListForListing(ctx, listingID)
}

func (s *service) MyCounteroffers(ctx context.Context, buyer string) ([]counteroffers.Counteroffer, error) {
	return counteroffers.NewWorkflow(s.reads.Offers).ListByBuyer(ctx, buyer)
}
