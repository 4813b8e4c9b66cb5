package venues

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenue(ctx context.Context, id string) (*Venue, error)
	UpdateVenue(ctx context.Context, venue *Venue) error
	ListVenues(ctx context.Context, onlyApproved bool) ([]Venue, error)

	CreateLocality(ctx context.Context, locality *Locality) error
	GetLocality(ctx context.Context, id string) (*Locality, error)
	ListLocalities(ctx context.Context, eventID string) ([]Locality, error)
	// AdjustAvailable adds delta to available, failing rather than leaving it outside [0, capacity]
	AdjustAvailable(ctx context.Context, localityID string, delta int) error

	CreateOffer(ctx context.Context, offer *Offer) error
	GetOffer(ctx context.Context, id string) (*Offer, error)
	UpdateOffer(ctx context.Context, offer *Offer) error
	ListOffers(ctx context.Context, localityID string) ([]Offer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateVenue(ctx context.Context, venue *Venue) error {
	if err := r.db.WithContext(ctx).Create(venue).Error; err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}
	return nil
}

func (r *repository) GetVenue(ctx context.Context, id string) (*Venue, error) {
	var venue Venue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&venue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &venue, nil
}

func (r *repository) UpdateVenue(ctx context.Context, venue *Venue) error {
	if err := r.db.WithContext(ctx).Save(venue).Error; err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	return nil
}

func (r *repository) ListVenues(ctx context.Context, onlyApproved bool) ([]Venue, error) {
	db := r.db.WithContext(ctx)
	if onlyApproved {
		db = db.Where("approved = ?", true)
	}
	var out []Venue
	if err := db.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return out, nil
}

func (r *repository) CreateLocality(ctx context.Context, locality *Locality) error {
	if err := r.db.WithContext(ctx).Create(locality).Error; err != nil {
		return fmt.Errorf("failed to create locality: %w", err)
	}
	return nil
}

func (r *repository) GetLocality(ctx context.Context, id string) (*Locality, error) {
	var locality Locality
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&locality).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocalityNotFound
		}
		return nil, fmt.Errorf("failed to get locality: %w", err)
	}
	return &locality, nil
}

func (r *repository) ListLocalities(ctx context.Context, eventID string) ([]Locality, error) {
	var out []Locality
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list localities: %w", err)
	}
	return out, nil
}

func (r *repository) AdjustAvailable(ctx context.Context, localityID string, delta int) error {
	res := r.db.WithContext(ctx).Model(&Locality{}).
		Where("id = ? AND available + ? >= 0 AND available + ? <= capacity", localityID, delta, delta).
		Update("available", gorm.Expr("available + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetLocality(ctx, localityID); err != nil {
			return err
		}
		return ErrInsufficientAvailability
	}
	return nil
}

func (r *repository) CreateOffer(ctx context.Context, offer *Offer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *repository) GetOffer(ctx context.Context, id string) (*Offer, error) {
	var offer Offer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (r *repository) UpdateOffer(ctx context.Context, offer *Offer) error {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return nil
}

func (r *repository) ListOffers(ctx context.Context, localityID string) ([]Offer, error) {
	var out []Offer
	if err := r.db.WithContext(ctx).Where("locality_id = ?", localityID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return out, nil
}

type memoryRepository struct {
	mu         sync.RWMutex
	venues     map[string]Venue
	localities map[string]Locality
	offers     map[string]Offer
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		venues:     make(map[string]Venue),
		localities: make(map[string]Locality),
		offers:     make(map[string]Offer),
	}
}

func (m *memoryRepository) CreateVenue(_ context.Context, venue *Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.venues {
		if v.Name == venue.Name {
			return fmt.Errorf("failed to create venue: duplicate name %q", venue.Name)
		}
	}
	venue.CreatedAt = time.Now()
	m.venues[venue.ID] = *venue
	return nil
}

func (m *memoryRepository) GetVenue(_ context.Context, id string) (*Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, ErrVenueNotFound
	}
	return &v, nil
}

func (m *memoryRepository) UpdateVenue(_ context.Context, venue *Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.venues[venue.ID]; !ok {
		return ErrVenueNotFound
	}
	venue.UpdatedAt = time.Now()
	m.venues[venue.ID] = *venue
	return nil
}

func (m *memoryRepository) ListVenues(_ context.Context, onlyApproved bool) ([]Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Venue{}
	for _, v := range m.venues {
		if onlyApproved && !v.Approved {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) CreateLocality(_ context.Context, locality *Locality) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.localities {
		if l.EventID == locality.EventID && l.Name == locality.Name {
			return fmt.Errorf("failed to create locality: duplicate name %q", locality.Name)
		}
	}
	locality.CreatedAt = time.Now()
	m.localities[locality.ID] = *locality
	return nil
}

func (m *memoryRepository) GetLocality(_ context.Context, id string) (*Locality, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.localities[id]
	if !ok {
		return nil, ErrLocalityNotFound
	}
	return &l, nil
}

func (m *memoryRepository) ListLocalities(_ context.Context, eventID string) ([]Locality, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Locality{}
	for _, l := range m.localities {
		if l.EventID == eventID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) AdjustAvailable(_ context.Context, localityID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.localities[localityID]
	if !ok {
		return ErrLocalityNotFound
	}
	next := l.Available + delta
	if next < 0 || next > l.Capacity {
		return ErrInsufficientAvailability
	}
	l.Available = next
	m.localities[localityID] = l
	return nil
}

func (m *memoryRepository) CreateOffer(_ context.Context, offer *Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer.CreatedAt = time.Now()
	m.offers[offer.ID] = *offer
	return nil
}

func (m *memoryRepository) GetOffer(_ context.Context, id string) (*Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrOfferNotFound
	}
	return &o, nil
}

func (m *memoryRepository) UpdateOffer(_ context.Context, offer *Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offers[offer.ID]; !ok {
		return ErrOfferNotFound
	}
	m.offers[offer.ID] = *offer
	return nil
}

func (m *memoryRepository) ListOffers(_ context.Context, localityID string) ([]Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Offer{}
	for _, o := range m.offers {
		if o.LocalityID == localityID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
