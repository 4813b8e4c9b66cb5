package refunds

import (
	"context"
	"errors"
	"strings"
	"time"

	"boletamaster/internal/events"
	"boletamaster/internal/marketplace"
	"boletamaster/internal/purchases"
	"boletamaster/internal/tickets"
	"boletamaster/pkg/logger"

	"github.com/google/uuid"
)

// Refunder is the slice of the marketplace that moves refund money
type Refunder interface {
	RefundHardship(ctx context.Context, ticketID, holder string) (*purchases.Refund, error)
	RefundEventCancellation(ctx context.Context, eventID string) (*marketplace.CancellationSummary, error)
}

type EventCanceller interface {
	CancelEvent(ctx context.Context, id, reason string) (*events.Event, error)
}

type TicketReader interface {
	Get(ctx context.Context, id string) (*tickets.Ticket, error)
}

type Service interface {
	RequestHardship(ctx context.Context, holder, ticketID, reason string) (*RefundRequest, error)
	Approve(ctx context.Context, admin, id string) (*RefundRequest, error)
	Reject(ctx context.Context, admin, id, note string) (*RefundRequest, error)
	ListPending(ctx context.Context) ([]RefundRequest, error)
	ListMine(ctx context.Context, holder string) ([]RefundRequest, error)
	CancelEvent(ctx context.Context, admin, eventID, reason string) (*marketplace.CancellationSummary, error)
}

type service struct {
	repo     Repository
	tickets  TicketReader
	refunder Refunder
	events   EventCanceller
	now      func() time.Time
}

func NewService(repo Repository, tickets TicketReader, refunder Refunder, events EventCanceller) Service {
	return &service{
		repo:     repo,
		tickets:  tickets,
		refunder: refunder,
		events:   events,
		now:      time.Now,
	}
}

func (s *service) RequestHardship(ctx context.Context, holder, ticketID, reason string) (*RefundRequest, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 || len(reason) > 500 {
		return nil, ErrInvalidReason
	}
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.HolderLogin != holder {
		return nil, ErrNotHolder
	}
	if !t.IsValidAt(s.now()) {
		return nil, tickets.ErrTicketNotValid
	}

	req := &RefundRequest{
		ID:          uuid.NewString(),
		TicketID:    t.ID,
		EventID:     t.EventID,
		HolderLogin: holder,
		Reason:      reason,
		Status:      StatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Refund requested", map[string]interface{}{
		"request_id": req.ID,
		"ticket_id":  t.ID,
		"holder":     holder,
	})
	return req, nil
}

// Approve pays the refund first; the request is only marked approved once
// the money has moved
func (s *service) Approve(ctx context.Context, admin, id string) (*RefundRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, ErrNotPending
	}

	refund, err := s.refunder.RefundHardship(ctx, req.TicketID, req.HolderLogin)
	if err != nil {
		return nil, err
	}

	now := s.now()
	amount := refund.Amount
	req.Status = StatusApproved
	req.Amount = &amount
	req.DecidedBy = admin
	req.DecidedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) Reject(ctx context.Context, admin, id, note string) (*RefundRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, ErrNotPending
	}

	now := s.now()
	req.Status = StatusRejected
	req.DecidedBy = admin
	req.DecisionNote = strings.TrimSpace(note)
	req.DecidedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Refund request rejected", map[string]interface{}{
		"request_id": req.ID,
		"admin":      admin,
	})
	return req, nil
}

func (s *service) ListPending(ctx context.Context) ([]RefundRequest, error) {
	return s.repo.List(ctx, ListQuery{Status: StatusPending})
}

func (s *service) ListMine(ctx context.Context, holder string) ([]RefundRequest, error) {
	return s.repo.List(ctx, ListQuery{HolderLogin: holder})
}

// CancelEvent cancels the event and refunds its holders. Calling it again on
// an already cancelled event retries the refunds, which skip whatever was
// already paid.
func (s *service) CancelEvent(ctx context.Context, admin, eventID, reason string) (*marketplace.CancellationSummary, error) {
	if _, err := s.events.CancelEvent(ctx, eventID, reason); err != nil && !errors.Is(err, events.ErrEventCancelled) {
		return nil, err
	}

	summary, err := s.refunder.RefundEventCancellation(ctx, eventID)
	if err != nil {
		return nil, err
	}

	closed, err := s.repo.RejectPendingForEvent(ctx, eventID, admin, "event cancelled", s.now())
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to close refund requests of cancelled event", err, map[string]interface{}{
			"event_id": eventID,
		})
	}

	logger.GetDefault().InfoWithContext(ctx, "Event cancelled by admin", map[string]interface{}{
		"event_id":          eventID,
		"admin":             admin,
		"tickets_refunded":  summary.TicketsRefunded,
		"requests_rejected": closed,
	})
	return summary, nil
}
