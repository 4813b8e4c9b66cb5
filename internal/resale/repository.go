package resale

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	Get(ctx context.Context, id string) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindActiveByTicket(ctx context.Context, ticketID string) (*Listing, error)
	ListActive(ctx context.Context) ([]Listing, error)
	ListBySeller(ctx context.Context, login string) ([]Listing, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		// the partial unique index backs up the in-process check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyListed
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Listing, error) {
	var listing Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (r *repository) Update(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Listing{}).Error; err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

func (r *repository) FindActiveByTicket(ctx context.Context, ticketID string) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).Where("ticket_id = ? AND active = ?", ticketID, true).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &listing, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Listing, error) {
	var out []Listing
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return out, nil
}

func (r *repository) ListBySeller(ctx context.Context, login string) ([]Listing, error) {
	var out []Listing
	if err := r.db.WithContext(ctx).Where("seller_login = ?", login).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return out, nil
}

type memoryRepository struct {
	mu       sync.RWMutex
	listings map[string]Listing
}

func NewMemoryRepository() Repository {
	return &memoryRepository{listings: make(map[string]Listing)}
}

func (m *memoryRepository) Create(_ context.Context, listing *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.listings {
		if l.Active && l.TicketID == listing.TicketID {
			return ErrAlreadyListed
		}
	}
	m.listings[listing.ID] = *listing
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return &l, nil
}

func (m *memoryRepository) Update(_ context.Context, listing *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[listing.ID]; !ok {
		return ErrListingNotFound
	}
	m.listings[listing.ID] = *listing
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *memoryRepository) FindActiveByTicket(_ context.Context, ticketID string) (*Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listings {
		if l.Active && l.TicketID == ticketID {
			return &l, nil
		}
	}
	return nil, ErrListingNotFound
}

func (m *memoryRepository) ListActive(_ context.Context) ([]Listing, error) {
	return m.filter(func(l Listing) bool { return l.Active }, false), nil
}

func (m *memoryRepository) ListBySeller(_ context.Context, login string) ([]Listing, error) {
	return m.filter(func(l Listing) bool { return l.SellerLogin == login }, true), nil
}

func (m *memoryRepository) filter(keep func(Listing) bool, newestFirst bool) []Listing {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Listing{}
	for _, l := range m.listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
