package analytics

import (
	"context"
	"fmt"
	"time"

	"boletamaster/internal/events"
	"boletamaster/internal/shared/constants"
	"boletamaster/pkg/cache"

	"github.com/shopspring/decimal"
)

// EventDirectory is the part of the events service the reports read
type EventDirectory interface {
	GetEvent(ctx context.Context, id string) (*events.Event, error)
	ListEvents(ctx context.Context, query events.ListQuery) ([]events.Event, error)
}

type Service interface {
	PlatformEarnings(ctx context.Context) (*PlatformEarnings, error)
	PlatformEarningsByEvent(ctx context.Context, eventID string) (*EventEarnings, error)
	OrganizerEarnings(ctx context.Context, organizer string) (*OrganizerEarnings, error)
}

type service struct {
	repo   Repository
	events EventDirectory
	cache  cache.Service
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo Repository, events EventDirectory, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNoop()
	}
	return &service{
		repo:   repo,
		events: events,
		cache:  cacheService,
		ttl:    constants.TTL_ANALYTICS_EARNINGS,
		now:    time.Now,
	}
}

func (s *service) PlatformEarnings(ctx context.Context) (*PlatformEarnings, error) {
	var out PlatformEarnings
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_PLATFORM, s.ttl, func() (interface{}, error) {
		return s.buildPlatformEarnings(ctx)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) buildPlatformEarnings(ctx context.Context) (*PlatformEarnings, error) {
	rows, err := s.repo.FeesByEvent(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform earnings: %w", err)
	}
	names, err := s.eventNames(ctx)
	if err != nil {
		return nil, err
	}

	out := &PlatformEarnings{
		ServiceFees:  decimal.Zero,
		IssuanceFees: decimal.Zero,
		Total:        decimal.Zero,
		Events:       make([]EventEarnings, 0, len(rows)),
		GeneratedAt:  s.now(),
	}
	for _, row := range rows {
		row.EventName = names[row.EventID]
		out.Purchases += row.Purchases
		out.ServiceFees = out.ServiceFees.Add(row.ServiceFees)
		out.IssuanceFees = out.IssuanceFees.Add(row.IssuanceFees)
		out.Total = out.Total.Add(row.Total)
		out.Events = append(out.Events, row)
	}
	return out, nil
}

func (s *service) PlatformEarningsByEvent(ctx context.Context, eventID string) (*EventEarnings, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var out EventEarnings
	err = s.cache.GetOrSet(ctx, constants.BuildEventEarningsKey(eventID), s.ttl, func() (interface{}, error) {
		rows, err := s.repo.FeesByEvent(ctx, []string{eventID})
		if err != nil {
			return nil, fmt.Errorf("failed to get event earnings: %w", err)
		}
		row := EventEarnings{EventID: eventID, ServiceFees: decimal.Zero, IssuanceFees: decimal.Zero, Total: decimal.Zero}
		if len(rows) > 0 {
			row = rows[0]
		}
		row.EventName = event.Name
		return row, nil
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OrganizerEarnings reports, per owned event, the ticket revenue before fees
// and how much of each locality has been sold
func (s *service) OrganizerEarnings(ctx context.Context, organizer string) (*OrganizerEarnings, error) {
	var out OrganizerEarnings
	err := s.cache.GetOrSet(ctx, constants.BuildOrganizerEarningsKey(organizer), s.ttl, func() (interface{}, error) {
		return s.buildOrganizerEarnings(ctx, organizer)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) buildOrganizerEarnings(ctx context.Context, organizer string) (*OrganizerEarnings, error) {
	owned, err := s.events.ListEvents(ctx, events.ListQuery{OrganizerLogin: organizer})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}
	ids := make([]string, 0, len(owned))
	for _, e := range owned {
		ids = append(ids, e.ID)
	}

	revenue, err := s.repo.RevenueByEvent(ctx, ids)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.LocalitySales(ctx, ids)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[string][]LocalitySales, len(ids))
	for _, l := range sales {
		byEvent[l.EventID] = append(byEvent[l.EventID], l)
	}

	now := s.now()
	out := &OrganizerEarnings{
		OrganizerLogin: organizer,
		Revenue:        decimal.Zero,
		Events:         make([]OrganizerEventEarnings, 0, len(owned)),
		GeneratedAt:    now,
	}
	for _, e := range owned {
		row := OrganizerEventEarnings{
			EventID:    e.ID,
			EventName:  e.Name,
			Status:     string(e.StatusAt(now)),
			Revenue:    revenue[e.ID].Add(decimal.Zero),
			Localities: byEvent[e.ID],
		}
		if row.Localities == nil {
			row.Localities = []LocalitySales{}
		}
		for _, l := range row.Localities {
			row.TicketsSold += l.Sold
		}
		out.Revenue = out.Revenue.Add(row.Revenue)
		out.TicketsSold += row.TicketsSold
		out.Events = append(out.Events, row)
	}
	return out, nil
}

func (s *service) eventNames(ctx context.Context) (map[string]string, error) {
	all, err := s.events.ListEvents(ctx, events.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	names := make(map[string]string, len(all))
	for _, e := range all {
		names[e.ID] = e.Name
	}
	return names, nil
}
