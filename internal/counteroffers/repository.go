package counteroffers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, offer *Counteroffer) error
	Get(ctx context.Context, id string) (*Counteroffer, error)
	UpdateAll(ctx context.Context, offers []*Counteroffer) error
	Delete(ctx context.Context, id string) error
	ListByListing(ctx context.Context, listingID string, status Status) ([]Counteroffer, error)
	ListByBuyer(ctx context.Context, login string) ([]Counteroffer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, offer *Counteroffer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePending
		}
		return fmt.Errorf("failed to create counteroffer: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Counteroffer, error) {
	var offer Counteroffer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCounterofferNotFound
		}
		return nil, fmt.Errorf("failed to get counteroffer: %w", err)
	}
	return &offer, nil
}

func (r *repository) UpdateAll(ctx context.Context, offers []*Counteroffer) error {
	db := r.db.WithContext(ctx)
	for _, o := range offers {
		if err := db.Save(o).Error; err != nil {
			return fmt.Errorf("failed to update counteroffer %s: %w", o.ID, err)
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Counteroffer{}).Error; err != nil {
		return fmt.Errorf("failed to delete counteroffer: %w", err)
	}
	return nil
}

func (r *repository) ListByListing(ctx context.Context, listingID string, status Status) ([]Counteroffer, error) {
	db := r.db.WithContext(ctx).Where("listing_id = ?", listingID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var out []Counteroffer
	if err := db.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list counteroffers: %w", err)
	}
	return out, nil
}

func (r *repository) ListByBuyer(ctx context.Context, login string) ([]Counteroffer, error) {
	var out []Counteroffer
	if err := r.db.WithContext(ctx).Where("buyer_login = ?", login).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list counteroffers: %w", err)
	}
	return out, nil
}

type memoryRepository struct {
	mu     sync.RWMutex
	offers map[string]Counteroffer
	seq    map[string]int
	next   int
}

func NewMemoryRepository() Repository {
	return &memoryRepository{offers: make(map[string]Counteroffer), seq: make(map[string]int)}
}

func (m *memoryRepository) Create(_ context.Context, offer *Counteroffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.IsPending() && o.ListingID == offer.ListingID && o.BuyerLogin == offer.BuyerLogin {
			return ErrDuplicatePending
		}
	}
	m.next++
	m.seq[offer.ID] = m.next
	m.offers[offer.ID] = *offer
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*Counteroffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrCounterofferNotFound
	}
	return &o, nil
}

func (m *memoryRepository) UpdateAll(_ context.Context, offers []*Counteroffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range offers {
		if _, ok := m.offers[o.ID]; !ok {
			return ErrCounterofferNotFound
		}
	}
	for _, o := range offers {
		m.offers[o.ID] = *o
	}
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offers, id)
	delete(m.seq, id)
	return nil
}

func (m *memoryRepository) ListByListing(_ context.Context, listingID string, status Status) ([]Counteroffer, error) {
	return m.filter(func(o Counteroffer) bool {
		return o.ListingID == listingID && (status == "" || o.Status == status)
	}, false), nil
}

func (m *memoryRepository) ListByBuyer(_ context.Context, login string) ([]Counteroffer, error) {
	return m.filter(func(o Counteroffer) bool { return o.BuyerLogin == login }, true), nil
}

func (m *memoryRepository) filter(keep func(Counteroffer) bool, newestFirst bool) []Counteroffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Counteroffer{}
	for _, o := range m.offers {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return m.seq[out[i].ID] > m.seq[out[j].ID]
		}
		return m.seq[out[i].ID] < m.seq[out[j].ID]
	})
	return out
}
