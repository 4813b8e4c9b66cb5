package purchases

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
	Create(ctx context.Context, purchase *Purchase) error
	Get(ctx context.Context, id string) (*Purchase, error)
	Update(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListQuery) ([]Purchase, error)
	// MarkRefunded flags every approved platform sale of an event as refunded
	MarkRefunded(ctx context.Context, eventID string, at time.Time) (int64, error)

	CreateRefunds(ctx context.Context, refunds []Refund) error
	DeleteRefunds(ctx context.Context, ids []string) error
	ListRefunds(ctx context.Context, eventID string) ([]Refund, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, purchase *Purchase) error {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Purchase, error) {
	var purchase Purchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return &purchase, nil
}

func (r *repository) Update(ctx context.Context, purchase *Purchase) error {
	if err := r.db.WithContext(ctx).Save(purchase).Error; err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Purchase{}).Error; err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Purchase, error) {
	db := r.db.WithContext(ctx).Model(&Purchase{})
	if query.BuyerLogin != "" {
		db = db.Where("buyer_login = ?", query.BuyerLogin)
	}
	if query.EventID != "" {
		db = db.Where("event_id = ?", query.EventID)
	}
	if query.Kind != "" {
		db = db.Where("kind = ?", query.Kind)
	}
	var out []Purchase
	if err := db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return out, nil
}

func (r *repository) MarkRefunded(ctx context.Context, eventID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Purchase{}).
		Where("event_id = ? AND status = ? AND kind IN ?", eventID, StatusApproved, []Kind{KindPrimary, KindPreallocation}).
		Updates(map[string]interface{}{"status": StatusRefunded, "refunded_at": at})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark purchases refunded: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateRefunds(ctx context.Context, refunds []Refund) error {
	if len(refunds) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&refunds).Error; err != nil {
		return fmt.Errorf("failed to record refunds: %w", err)
	}
	return nil
}

func (r *repository) DeleteRefunds(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Refund{}).Error; err != nil {
		return fmt.Errorf("failed to delete refunds: %w", err)
	}
	return nil
}

func (r *repository) ListRefunds(ctx context.Context, eventID string) ([]Refund, error) {
	db := r.db.WithContext(ctx)
	if eventID != "" {
		db = db.Where("event_id = ?", eventID)
	}
	var out []Refund
	if err := db.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	return out, nil
}

type memoryRepository struct {
	mu        sync.RWMutex
	purchases []Purchase
	refunds   []Refund
}

func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (m *memoryRepository) Create(_ context.Context, purchase *Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *purchase
	p.TicketIDs = append([]string(nil), purchase.TicketIDs...)
	m.purchases = append(m.purchases, p)
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.purchases {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrPurchaseNotFound
}

func (m *memoryRepository) Update(_ context.Context, purchase *Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.purchases {
		if m.purchases[i].ID == purchase.ID {
			p := *purchase
			p.TicketIDs = append([]string(nil), purchase.TicketIDs...)
			m.purchases[i] = p
			return nil
		}
	}
	return ErrPurchaseNotFound
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.purchases {
		if m.purchases[i].ID == id {
			m.purchases = append(m.purchases[:i], m.purchases[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memoryRepository) List(_ context.Context, query ListQuery) ([]Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Purchase{}
	for _, p := range m.purchases {
		if query.BuyerLogin != "" && p.BuyerLogin != query.BuyerLogin {
			continue
		}
		if query.EventID != "" && p.EventID != query.EventID {
			continue
		}
		if query.Kind != "" && p.Kind != query.Kind {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepository) MarkRefunded(_ context.Context, eventID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.purchases {
		p := &m.purchases[i]
		if p.EventID != eventID || p.Status != StatusApproved || p.Kind.IsSecondary() {
			continue
		}
		p.Status = StatusRefunded
		refundedAt := at
		p.RefundedAt = &refundedAt
		n++
	}
	return n, nil
}

func (m *memoryRepository) CreateRefunds(_ context.Context, refunds []Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds = append(m.refunds, refunds...)
	return nil
}

func (m *memoryRepository) DeleteRefunds(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.refunds[:0]
	for _, r := range m.refunds {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	m.refunds = kept
	return nil
}

func (m *memoryRepository) ListRefunds(_ context.Context, eventID string) ([]Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Refund{}
	for _, r := range m.refunds {
		if eventID == "" || r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}
