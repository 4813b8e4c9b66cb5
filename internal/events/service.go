package events

import (
	"context"
	"strings"
	"time"

	"boletamaster/pkg/logger"

	"github.com/google/uuid"
)

// VenueChecker interface to avoid circular dependencies
type VenueChecker interface {
	IsVenueApproved(ctx context.Context, venueID string) (bool, error)
}

type Service interface {
	CreateEvent(ctx context.Context, organizer string, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, query ListQuery) ([]Event, error)
	ApproveEvent(ctx context.Context, id string) (*Event, error)
	RejectEvent(ctx context.Context, id string) (*Event, error)
	CancelEvent(ctx context.Context, id, reason string) (*Event, error)

	// EventOrganizer returns the organizer login, used to authorize catalog changes
	EventOrganizer(ctx context.Context, id string) (string, error)
	IsActive(ctx context.Context, id string) (bool, error)

	SetVenueChecker(venues VenueChecker)
}

type CreateEventInput struct {
	Name        string
	Description string
	VenueID     string
	ShowTime    time.Time
}

type service struct {
	repo   Repository
	venues VenueChecker
	now    func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) SetVenueChecker(venues VenueChecker) {
	s.venues = venues
}

func (s *service) CreateEvent(ctx context.Context, organizer string, in CreateEventInput) (*Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.VenueID == "" {
		return nil, ErrInvalidEvent
	}
	if !in.ShowTime.After(s.now()) {
		return nil, ErrShowTimeInPast
	}
	if s.venues != nil {
		ok, err := s.venues.IsVenueApproved(ctx, in.VenueID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrVenueNotApproved
		}
	}

	event := &Event{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		VenueID:        in.VenueID,
		OrganizerLogin: organizer,
		ShowTime:       in.ShowTime,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Event created", map[string]interface{}{
		"event_id":  event.ID,
		"organizer": organizer,
		"venue_id":  event.VenueID,
	})
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListEvents(ctx context.Context, query ListQuery) ([]Event, error) {
	return s.repo.List(ctx, query)
}

func (s *service) ApproveEvent(ctx context.Context, id string) (*Event, error) {
	return s.decide(ctx, id, true)
}

func (s *service) RejectEvent(ctx context.Context, id string) (*Event, error) {
	return s.decide(ctx, id, false)
}

func (s *service) decide(ctx context.Context, id string, approve bool) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.StatusAt(s.now()) != StatusPendingApproval {
		return nil, ErrEventNotPending
	}
	event.Approved = approve
	event.Rejected = !approve
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// CancelEvent only flips the flag; refunding holders is the caller's job
func (s *service) CancelEvent(ctx context.Context, id, reason string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Cancelled {
		return nil, ErrEventCancelled
	}
	event.Cancelled = true
	event.CancelReason = reason
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Event cancelled", map[string]interface{}{
		"event_id": id,
		"reason":   reason,
	})
	return event, nil
}

func (s *service) EventOrganizer(ctx context.Context, id string) (string, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return event.OrganizerLogin, nil
}

func (s *service) IsActive(ctx context.Context, id string) (bool, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return event.IsActiveAt(s.now()), nil
}
