package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Save ignores records already stored for the same event and login
	Save(ctx context.Context, records []ActivityRecord) error
	ListByLogin(ctx context.Context, login string, limit int) ([]ActivityRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, records []ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

func (r *repository) ListByLogin(ctx context.Context, login string, limit int) ([]ActivityRecord, error) {
	var records []ActivityRecord
	err := r.db.WithContext(ctx).
		Where("login = ?", login).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return records, nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	records []ActivityRecord
	seen    map[string]struct{}
}

func NewMemoryRepository() Repository {
	return &memoryRepository{seen: make(map[string]struct{})}
}

func (m *memoryRepository) Save(_ context.Context, records []ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		key := rec.DomainEventID.String() + "/" + rec.Login
		if _, dup := m.seen[key]; dup {
			continue
		}
		m.seen[key] = struct{}{}
		rec.ID = uint(len(m.records) + 1)
		m.records = append(m.records, rec)
	}
	return nil
}

func (m *memoryRepository) ListByLogin(_ context.Context, login string, limit int) ([]ActivityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ActivityRecord
	for _, rec := range m.records {
		if rec.Login == login {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
