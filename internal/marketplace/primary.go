package marketplace

import (
	"context"
	"time"

	"boletamaster/internal/notifications"
	"boletamaster/internal/purchases"
	"boletamaster/internal/tickets"
	"boletamaster/internal/venues"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var newID = uuid.NewString

// BuyPrimary sells fresh tickets from a locality. Everything is checked
// under the locality lock before the buyer is debited.
func (s *service) BuyPrimary(ctx context.Context, in PurchaseInput) (res *PurchaseResult, err error) {
	defer metrics.ObserveOperation("buy_primary", time.Now(), &err)

	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if in.Kind == "" {
		in.Kind = tickets.KindSimple
	}
	if !in.Kind.IsValid() {
		return nil, tickets.ErrInvalidKind
	}
	if _, err := s.customer(ctx, in.Buyer); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, LockKeys(nil, nil, in.LocalityID))
	if err != nil {
		return nil, err
	}
	defer release()

	loc, err := s.catalog.Locality(ctx, in.LocalityID)
	if err != nil {
		return nil, err
	}
	if loc.EventID != in.EventID {
		return nil, ErrLocalityMismatch
	}
	active, err := s.catalog.IsEventActive(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrEventNotActive
	}
	event, err := s.catalog.EventInfo(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	seats := in.Quantity
	if in.Kind == tickets.KindPremiumBundle {
		seats = 1
	}
	available, err := s.catalog.LocalityAvailability(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	if available < seats {
		return nil, venues.ErrInsufficientAvailability
	}

	minted, err := mint(in, loc, event.ShowTime)
	if err != nil {
		return nil, err
	}

	engine := s.engine(nil)
	if err := engine.ValidatePurchaseCap(minted, s.opts.MaxTicketsPerTransaction); err != nil {
		return nil, err
	}
	fees := s.fees.Current()
	breakdown, err := engine.ComputeTotal(ctx, minted, fees.ServicePercent, fees.FixedFee)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFunds(ctx, in.Buyer, breakdown.Total); err != nil {
		return nil, err
	}

	purchase, err := s.newPurchase(purchases.KindPrimary, in.Buyer)
	if err != nil {
		return nil, err
	}
	purchase.EventID = in.EventID
	purchase.LocalityID = loc.ID
	purchase.TicketIDs = ticketIDs(minted)
	purchase.Subtotal = breakdown.Subtotal
	purchase.ServiceFee = breakdown.ServiceFee
	purchase.IssuanceFees = breakdown.IssuanceFees
	purchase.Total = breakdown.Total

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := s.engine(st.Wallets).ProcessBalancePurchase(ctx, in.Buyer, breakdown.Total); err != nil {
			return err
		}
		if err := st.Inventory.DecrementLocalityAvailability(ctx, loc.ID, seats); err != nil {
			return err
		}
		if err := st.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		return st.Tickets.SaveAll(ctx, minted)
	})
	if err != nil {
		return nil, err
	}

	metrics.TrackTicketsSold(string(purchases.KindPrimary), seats)
	s.invalidateEarnings(ctx)
	logger.GetDefault().LogTicketsPurchased(ctx, purchase.ID, in.Buyer, in.EventID, len(minted), breakdown.Total.StringFixed(2))

	evt := notifications.NewEvent(notifications.EventTicketsPurchased, in.Buyer)
	evt.EventID = in.EventID
	evt.PurchaseID = purchase.ID
	evt.Amount = breakdown.Total.StringFixed(2)
	evt.Details = map[string]string{"kind": string(in.Kind), "reference": purchase.Reference}
	s.publish(ctx, evt)

	return &PurchaseResult{Purchase: purchase, Tickets: minted, Breakdown: breakdown}, nil
}

// PreAllocate lets an organizer take tickets out of their own locality
// without paying, e.g. for guests or partners
func (s *service) PreAllocate(ctx context.Context, organizer, localityID string, qty int, basePrice decimal.Decimal) (res *PurchaseResult, err error) {
	defer metrics.ObserveOperation("pre_allocate", time.Now(), &err)

	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if basePrice.IsNegative() {
		return nil, tickets.ErrNegativePrice
	}
	if _, err := s.customer(ctx, organizer); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, LockKeys(nil, nil, localityID))
	if err != nil {
		return nil, err
	}
	defer release()

	loc, err := s.catalog.Locality(ctx, localityID)
	if err != nil {
		return nil, err
	}
	event, err := s.catalog.EventInfo(ctx, loc.EventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerLogin != organizer {
		return nil, ErrNotEventOrganizer
	}
	if event.Cancelled || !event.ShowTime.After(s.now()) {
		return nil, ErrEventClosed
	}
	available, err := s.catalog.LocalityAvailability(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	if available < qty {
		return nil, venues.ErrInsufficientAvailability
	}

	minted := make([]*tickets.Ticket, 0, qty)
	for i := 0; i < qty; i++ {
		t, err := tickets.NewSimple(newID(), loc.EventID, loc.ID, basePrice, event.ShowTime)
		if err != nil {
			return nil, err
		}
		t.SetHolder(organizer)
		minted = append(minted, t)
	}

	purchase, err := s.newPurchase(purchases.KindPreallocation, organizer)
	if err != nil {
		return nil, err
	}
	purchase.EventID = loc.EventID
	purchase.LocalityID = loc.ID
	purchase.TicketIDs = ticketIDs(minted)
	purchase.Subtotal = decimal.Zero
	purchase.Total = decimal.Zero

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := st.Inventory.DecrementLocalityAvailability(ctx, loc.ID, qty); err != nil {
			return err
		}
		if err := st.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		return st.Tickets.SaveAll(ctx, minted)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEarnings(ctx)
	logger.GetDefault().InfoWithContext(ctx, "Tickets Pre-allocated", map[string]interface{}{
		"organizer":   organizer,
		"locality_id": loc.ID,
		"tickets":     qty,
	})
	evt := notifications.NewEvent(notifications.EventTicketsPurchased, organizer)
	evt.EventID = loc.EventID
	evt.PurchaseID = purchase.ID
	evt.Details = map[string]string{"kind": string(purchases.KindPreallocation)}
	s.publish(ctx, evt)

	return &PurchaseResult{Purchase: purchase, Tickets: minted}, nil
}

// mint builds the tickets of a primary sale, already held by the buyer
func mint(in PurchaseInput, loc *venues.Locality, showTime time.Time) ([]*tickets.Ticket, error) {
	var out []*tickets.Ticket
	switch in.Kind {
	case tickets.KindDiscountBundle:
		t, err := tickets.NewDiscountBundle(newID(), loc.EventID, loc.ID, loc.BasePrice, showTime, in.Quantity, loc.BundleDiscount)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	case tickets.KindPremiumBundle:
		t, err := tickets.NewPremiumBundle(newID(), loc.EventID, loc.ID, loc.BasePrice, showTime, in.Benefits, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	default:
		for i := 0; i < in.Quantity; i++ {
			t, err := tickets.NewSimple(newID(), loc.EventID, loc.ID, loc.BasePrice, showTime)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	for _, t := range out {
		t.SetHolder(in.Buyer)
	}
	return out, nil
}

func ticketIDs(ts []*tickets.Ticket) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
