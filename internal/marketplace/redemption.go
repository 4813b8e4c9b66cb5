package marketplace

import (
	"context"
	"sort"
	"strconv"
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

// Redeem uses a ticket at the door. With an index, only that admission of a
// discount bundle is used.
func (s *service) Redeem(ctx context.Context, holder, ticketID string, index *int) (t *tickets.Ticket, err error) {
	defer metrics.ObserveOperation("redeem", time.Now(), &err)

	release, listing, err := s.lockTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err = s.reads.Tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.HolderLogin != holder {
		return nil, resale.ErrNotOwner
	}
	now := s.now()
	if index == nil {
		if !t.IsValidAt(now) {
			return nil, tickets.ErrTicketNotValid
		}
		t.MarkUsedAt(now)
	} else if err := t.UseIndividual(*index, now); err != nil {
		return nil, err
	}

	closed := false
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if err := st.Tickets.Save(ctx, t); err != nil {
			return err
		}
		if listing == nil || t.IsTransferableAt(now) {
			return nil
		}
		closed = true
		_, err := s.closeListing(ctx, st, listing, resale.ReasonTicketInvalidated)
		return err
	})
	if err != nil {
		return nil, err
	}
	if closed {
		s.invalidateListings(ctx)
	}

	evt := notifications.NewEvent(notifications.EventTicketRedeemed, holder)
	evt.EventID = t.EventID
	evt.TicketID = t.ID
	if index != nil {
		evt.Details = map[string]string{"index": strconv.Itoa(*index)}
	}
	s.publish(ctx, evt)

	return t, nil
}

// RefundHardship returns the full base price to the holder and retires the
// ticket
func (s *service) RefundHardship(ctx context.Context, ticketID, holder string) (refund *purchases.Refund, err error) {
	defer metrics.ObserveOperation("refund_hardship", time.Now(), &err)

	release, listing, err := s.lockTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := s.reads.Tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.HolderLogin != holder {
		return nil, resale.ErrNotOwner
	}
	now := s.now()
	if !t.IsValidAt(now) {
		return nil, tickets.ErrTicketNotValid
	}
	amount, err := s.engine(nil).ComputeRefund(t, false, s.fees.Current().FixedFee)
	if err != nil {
		return nil, err
	}

	refund = &purchases.Refund{
		ID:          newID(),
		TicketID:    t.ID,
		EventID:     t.EventID,
		LocalityID:  t.LocalityID,
		HolderLogin: holder,
		Amount:      amount,
		Reason:      purchases.RefundHardship,
		CreatedAt:   now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		if amount.IsPositive() {
			if err := s.engine(st.Wallets).ProcessRefund(ctx, holder, amount, string(purchases.RefundHardship)); err != nil {
				return err
			}
		}
		t.MarkUsedAt(now)
		if err := st.Tickets.Save(ctx, t); err != nil {
			return err
		}
		if listing != nil {
			if _, err := s.closeListing(ctx, st, listing, resale.ReasonTicketInvalidated); err != nil {
				return err
			}
		}
		return st.Purchases.CreateRefunds(ctx, []purchases.Refund{*refund})
	})
	if err != nil {
		return nil, err
	}
	if listing != nil {
		s.invalidateListings(ctx)
	}

	logger.GetDefault().LogRefundIssued(ctx, t.ID, holder, amount.StringFixed(2), string(purchases.RefundHardship))
	s.publish(ctx, refundEvent(refund))

	return refund, nil
}

// RefundEventCancellation refunds every still valid ticket of a cancelled
// event to whoever holds it now, keeping the issuance fee. Running it again
// finds nothing left to refund.
func (s *service) RefundEventCancellation(ctx context.Context, eventID string) (summary *CancellationSummary, err error) {
	defer metrics.ObserveOperation("refund_event_cancellation", time.Now(), &err)

	summary = &CancellationSummary{EventID: eventID, TotalRefunded: decimal.Zero}

	ids, listings, err := s.refundableTickets(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return summary, nil
	}

	release, err := s.lock(ctx, LockKeys(ids, listingKeys(listings), ""))
	if err != nil {
		return nil, err
	}
	defer release()

	// the set may have moved while we waited
	lockedIDs, lockedListings, err := s.refundableTickets(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !sameKeys(ids, lockedIDs) || !sameKeys(listingKeys(listings), listingKeys(lockedListings)) {
		return nil, ErrConcurrentUpdate
	}

	now := s.now()
	fixedFee := s.fees.Current().FixedFee
	engine := s.engine(nil)

	var (
		batch   []*tickets.Ticket
		refunds []purchases.Refund
	)
	for _, id := range ids {
		t, err := s.reads.Tickets.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		amount, err := engine.ComputeRefund(t, true, fixedFee)
		if err != nil {
			return nil, err
		}
		batch = append(batch, t)
		refunds = append(refunds, purchases.Refund{
			ID:          newID(),
			TicketID:    t.ID,
			EventID:     t.EventID,
			LocalityID:  t.LocalityID,
			HolderLogin: t.HolderLogin,
			Amount:      amount,
			Reason:      purchases.RefundEventCancelled,
			CreatedAt:   now,
		})
		summary.TotalRefunded = summary.TotalRefunded.Add(amount)
	}

	var rejected []counteroffers.Counteroffer
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st Stores) error {
		ledger := s.engine(st.Wallets)
		for i, t := range batch {
			if refunds[i].Amount.IsPositive() {
				if err := ledger.ProcessRefund(ctx, t.HolderLogin, refunds[i].Amount, string(purchases.RefundEventCancelled)); err != nil {
					return err
				}
			}
			t.MarkUsedAt(now)
		}
		if err := st.Tickets.SaveAll(ctx, batch); err != nil {
			return err
		}
		for _, l := range lockedListings {
			closed, err := s.closeListing(ctx, st, l, resale.ReasonTicketInvalidated)
			if err != nil {
				return err
			}
			rejected = append(rejected, closed...)
		}
		if err := st.Purchases.CreateRefunds(ctx, refunds); err != nil {
			return err
		}
		n, err := st.Purchases.MarkRefunded(ctx, eventID, now)
		summary.PurchasesRefunded = n
		return err
	})
	if err != nil {
		return nil, err
	}

	summary.TicketsRefunded = len(batch)
	summary.ListingsClosed = len(lockedListings)
	if len(lockedListings) > 0 {
		s.invalidateListings(ctx)
	}
	s.invalidateEarnings(ctx)

	logger.GetDefault().InfoWithContext(ctx, "Event Cancellation Refunded", map[string]interface{}{
		"event_id":        eventID,
		"tickets":         summary.TicketsRefunded,
		"total":           summary.TotalRefunded.StringFixed(2),
		"listings_closed": summary.ListingsClosed,
		"auto_rejected":   len(rejected),
	})
	for i := range refunds {
		s.publish(ctx, refundEvent(&refunds[i]))
	}

	return summary, nil
}

// refundableTickets returns the sorted ids of the event's valid tickets and
// their active listings
func (s *service) refundableTickets(ctx context.Context, eventID string) ([]string, []*resale.Listing, error) {
	all, err := s.reads.Tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	var (
		ids      []string
		listings []*resale.Listing
	)
	for _, t := range all {
		if !t.IsValidAt(now) {
			continue
		}
		ids = append(ids, t.ID)
		l, err := s.activeListing(ctx, t.ID)
		if err != nil {
			return nil, nil, err
		}
		if l != nil {
			listings = append(listings, l)
		}
	}
	sort.Strings(ids)
	return ids, listings, nil
}

func refundEvent(r *purchases.Refund) notifications.DomainEvent {
	evt := notifications.NewEvent(notifications.EventRefundIssued, r.HolderLogin)
	evt.EventID = r.EventID
	evt.TicketID = r.TicketID
	evt.Amount = r.Amount.StringFixed(2)
	evt.Details = map[string]string{"reason": string(r.Reason)}
	return evt
}

func listingKeys(ls []*resale.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	sort.Strings(out)
	return out
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
