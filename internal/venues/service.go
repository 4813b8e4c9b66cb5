package venues

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"boletamaster/internal/events"
	"boletamaster/internal/shared/constants"
	"boletamaster/pkg/cache"
	"boletamaster/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventDirectory is the slice of the events service venues depend on
type EventDirectory interface {
	GetEvent(ctx context.Context, id string) (*events.Event, error)
}

type Service interface {
	CreateVenue(ctx context.Context, admin string, in VenueInput) (*Venue, error)
	SuggestVenue(ctx context.Context, organizer string, in VenueInput) (*Venue, error)
	ApproveVenue(ctx context.Context, id string) (*Venue, error)
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context, onlyApproved bool) ([]Venue, error)
	IsVenueApproved(ctx context.Context, id string) (bool, error)

	AddLocality(ctx context.Context, organizer, eventID string, in LocalityInput) (*Locality, error)
	GetLocality(ctx context.Context, id string) (*Locality, error)
	ListLocalities(ctx context.Context, eventID string) ([]Locality, error)
	Availability(ctx context.Context, localityID string) (int, error)
	Reserve(ctx context.Context, localityID string, qty int) error
	Release(ctx context.Context, localityID string, qty int) error

	CreateOffer(ctx context.Context, organizer, localityID string, in OfferInput) (*Offer, error)
	DeactivateOffer(ctx context.Context, organizer, offerID string) (*Offer, error)
	ListOffers(ctx context.Context, localityID string) ([]Offer, error)
	ActiveDiscountForLocality(ctx context.Context, localityID string) (decimal.Decimal, bool, error)
}

type VenueInput struct {
	Name     string
	Location string
	Capacity int
}

type LocalityInput struct {
	Name      string
	Numbered  bool
	Capacity  int
	BasePrice decimal.Decimal
	// BundleDiscount must be in [0, 1); zero sells bundles at full price
	BundleDiscount decimal.Decimal
}

type OfferInput struct {
	Description string
	Discount    decimal.Decimal
	StartsAt    time.Time
	ExpiresAt   time.Time
}

type service struct {
	repo   Repository
	events EventDirectory
	cache  cache.Service
	now    func() time.Time
}

func NewService(repo Repository, events EventDirectory, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNoop()
	}
	return &service{repo: repo, events: events, cache: cacheService, now: time.Now}
}

//  VENUES

func (s *service) CreateVenue(ctx context.Context, admin string, in VenueInput) (*Venue, error) {
	return s.createVenue(ctx, admin, in, true)
}

func (s *service) SuggestVenue(ctx context.Context, organizer string, in VenueInput) (*Venue, error) {
	return s.createVenue(ctx, organizer, in, false)
}

func (s *service) createVenue(ctx context.Context, by string, in VenueInput, approved bool) (*Venue, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Capacity <= 0 {
		return nil, ErrInvalidVenue
	}

	venue := &Venue{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Location:    in.Location,
		Capacity:    in.Capacity,
		Approved:    approved,
		SuggestedBy: by,
	}
	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return nil, err
	}
	s.invalidateVenues(ctx)
	return venue, nil
}

func (s *service) ApproveVenue(ctx context.Context, id string) (*Venue, error) {
	venue, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue.Approved {
		return nil, ErrVenueAlreadyApproved
	}
	venue.Approved = true
	if err := s.repo.UpdateVenue(ctx, venue); err != nil {
		return nil, err
	}
	s.invalidateVenues(ctx)
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, id string) (*Venue, error) {
	return s.repo.GetVenue(ctx, id)
}

func (s *service) ListVenues(ctx context.Context, onlyApproved bool) ([]Venue, error) {
	if !onlyApproved {
		return s.repo.ListVenues(ctx, false)
	}

	var out []Venue
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_VENUES_APPROVED, constants.TTL_VENUES_APPROVED, func() (interface{}, error) {
		return s.repo.ListVenues(ctx, true)
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) IsVenueApproved(ctx context.Context, id string) (bool, error) {
	venue, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		return false, err
	}
	return venue.Approved, nil
}

func (s *service) invalidateVenues(ctx context.Context) {
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_VENUES_APPROVED); err != nil {
		logger.GetDefault().Warn("failed to invalidate venue cache", slog.Any("error", err))
	}
}

//  LOCALITIES

func (s *service) AddLocality(ctx context.Context, organizer, eventID string, in LocalityInput) (*Locality, error) {
	event, err := s.ownedEvent(ctx, organizer, eventID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Capacity <= 0 || in.BasePrice.IsNegative() {
		return nil, ErrInvalidLocality
	}
	in.BundleDiscount = in.BundleDiscount.Round(4)
	if in.BundleDiscount.IsNegative() || in.BundleDiscount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, ErrInvalidBundleDiscount
	}

	venue, err := s.repo.GetVenue(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListLocalities(ctx, eventID)
	if err != nil {
		return nil, err
	}
	total := in.Capacity
	for _, l := range existing {
		total += l.Capacity
	}
	if total > venue.Capacity {
		return nil, ErrCapacityExceeded
	}

	locality := &Locality{
		ID:        uuid.NewString(),
		EventID:   eventID,
		VenueID:   venue.ID,
		Name:      in.Name,
		Numbered:  in.Numbered,
		Capacity:  in.Capacity,
		Available: in.Capacity,
		BasePrice: in.BasePrice.Round(2),

		BundleDiscount: in.BundleDiscount,
	}
	if err := s.repo.CreateLocality(ctx, locality); err != nil {
		return nil, err
	}
	return locality, nil
}

func (s *service) GetLocality(ctx context.Context, id string) (*Locality, error) {
	return s.repo.GetLocality(ctx, id)
}

func (s *service) ListLocalities(ctx context.Context, eventID string) ([]Locality, error) {
	return s.repo.ListLocalities(ctx, eventID)
}

func (s *service) Availability(ctx context.Context, localityID string) (int, error) {
	locality, err := s.repo.GetLocality(ctx, localityID)
	if err != nil {
		return 0, err
	}
	return locality.Available, nil
}

func (s *service) Reserve(ctx context.Context, localityID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.repo.AdjustAvailable(ctx, localityID, -qty)
}

func (s *service) Release(ctx context.Context, localityID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.repo.AdjustAvailable(ctx, localityID, qty)
}

//  OFFERS

func (s *service) CreateOffer(ctx context.Context, organizer, localityID string, in OfferInput) (*Offer, error) {
	locality, err := s.repo.GetLocality(ctx, localityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedEvent(ctx, organizer, locality.EventID); err != nil {
		return nil, err
	}
	if !in.Discount.IsPositive() || in.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidDiscount
	}
	if !in.ExpiresAt.After(in.StartsAt) {
		return nil, ErrInvalidWindow
	}

	offer := &Offer{
		ID:          uuid.NewString(),
		LocalityID:  localityID,
		Description: in.Description,
		Discount:    in.Discount,
		StartsAt:    in.StartsAt,
		ExpiresAt:   in.ExpiresAt,
		Active:      true,
		CreatedBy:   organizer,
	}
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) DeactivateOffer(ctx context.Context, organizer, offerID string) (*Offer, error) {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	locality, err := s.repo.GetLocality(ctx, offer.LocalityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedEvent(ctx, organizer, locality.EventID); err != nil {
		return nil, err
	}
	if !offer.Active {
		return offer, nil
	}
	offer.Active = false
	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) ListOffers(ctx context.Context, localityID string) ([]Offer, error) {
	return s.repo.ListOffers(ctx, localityID)
}

func (s *service) ActiveDiscountForLocality(ctx context.Context, localityID string) (decimal.Decimal, bool, error) {
	offers, err := s.repo.ListOffers(ctx, localityID)
	if err != nil {
		return decimal.Zero, false, err
	}
	d, ok := CombineDiscounts(offers, s.now())
	return d, ok, nil
}

func (s *service) ownedEvent(ctx context.Context, organizer, eventID string) (*events.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerLogin != organizer {
		return nil, ErrNotEventOrganizer
	}
	return event, nil
}
