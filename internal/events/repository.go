package events

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
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	List(ctx context.Context, query ListQuery) ([]Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Event, error) {
	db := r.db.WithContext(ctx).Model(&Event{})
	if query.OrganizerLogin != "" {
		db = db.Where("organizer_login = ?", query.OrganizerLogin)
	}
	if query.OnlyActive {
		db = db.Where("approved = ? AND cancelled = ? AND show_time > ?", true, false, time.Now())
	}

	var out []Event
	if err := db.Order("show_time ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return filterStatus(out, query.Status), nil
}

func filterStatus(in []Event, status Status) []Event {
	if status == "" {
		return in
	}
	now := time.Now()
	out := make([]Event, 0, len(in))
	for _, e := range in {
		if e.StatusAt(now) == status {
			out = append(out, e)
		}
	}
	return out
}

type memoryRepository struct {
	mu     sync.RWMutex
	events map[string]Event
}

func NewMemoryRepository() Repository {
	return &memoryRepository{events: make(map[string]Event)}
}

func (m *memoryRepository) Create(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	event.CreatedAt, event.UpdatedAt = now, now
	m.events[event.ID] = *event
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &e, nil
}

func (m *memoryRepository) Update(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	event.UpdatedAt = time.Now()
	m.events[event.ID] = *event
	return nil
}

func (m *memoryRepository) List(_ context.Context, query ListQuery) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	out := []Event{}
	for _, e := range m.events {
		if query.OrganizerLogin != "" && e.OrganizerLogin != query.OrganizerLogin {
			continue
		}
		if query.OnlyActive && !e.IsActiveAt(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShowTime.Before(out[j].ShowTime) })
	return filterStatus(out, query.Status), nil
}
