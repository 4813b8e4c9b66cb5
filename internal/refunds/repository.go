package refunds

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
	Create(ctx context.Context, req *RefundRequest) error
	Get(ctx context.Context, id string) (*RefundRequest, error)
	Update(ctx context.Context, req *RefundRequest) error
	List(ctx context.Context, query ListQuery) ([]RefundRequest, error)
	// RejectPendingForEvent closes every open request on an event's tickets
	RejectPendingForEvent(ctx context.Context, eventID, by, note string, at time.Time) (int64, error)
}

type ListQuery struct {
	HolderLogin string
	Status      Status
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *RefundRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePending
		}
		return fmt.Errorf("failed to create refund request: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*RefundRequest, error) {
	var req RefundRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}
	return &req, nil
}

// Update only succeeds on a request that is still pending, so two admins
// cannot both decide it
func (r *repository) Update(ctx context.Context, req *RefundRequest) error {
	res := r.db.WithContext(ctx).
		Model(&RefundRequest{}).
		Where("id = ? AND status = ?", req.ID, StatusPending).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"amount":        req.Amount,
			"decided_by":    req.DecidedBy,
			"decision_note": req.DecisionNote,
			"decided_at":    req.DecidedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update refund request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]RefundRequest, error) {
	db := r.db.WithContext(ctx)
	if query.HolderLogin != "" {
		db = db.Where("holder_login = ?", query.HolderLogin)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	var out []RefundRequest
	if err := db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list refund requests: %w", err)
	}
	return out, nil
}

func (r *repository) RejectPendingForEvent(ctx context.Context, eventID, by, note string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&RefundRequest{}).
		Where("event_id = ? AND status = ?", eventID, StatusPending).
		Updates(map[string]interface{}{
			"status":        StatusRejected,
			"decided_by":    by,
			"decision_note": note,
			"decided_at":    at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reject pending refund requests: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type memoryRepository struct {
	mu       sync.RWMutex
	requests map[string]RefundRequest
}

func NewMemoryRepository() Repository {
	return &memoryRepository{requests: make(map[string]RefundRequest)}
}

func (m *memoryRepository) Create(_ context.Context, req *RefundRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.IsPending() && existing.TicketID == req.TicketID {
			return ErrDuplicatePending
		}
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*RefundRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

func (m *memoryRepository) Update(_ context.Context, req *RefundRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[req.ID]
	if !ok {
		return ErrRequestNotFound
	}
	if !current.IsPending() {
		return ErrNotPending
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *memoryRepository) List(_ context.Context, query ListQuery) ([]RefundRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []RefundRequest{}
	for _, req := range m.requests {
		if query.HolderLogin != "" && req.HolderLogin != query.HolderLogin {
			continue
		}
		if query.Status != "" && req.Status != query.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryRepository) RejectPendingForEvent(_ context.Context, eventID, by, note string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, req := range m.requests {
		if req.EventID != eventID || !req.IsPending() {
			continue
		}
		decidedAt := at
		req.Status = StatusRejected
		req.DecidedBy = by
		req.DecisionNote = note
		req.DecidedAt = &decidedAt
		m.requests[id] = req
		n++
	}
	return n, nil
}
