package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	SaveAll(ctx context.Context, ts []*Ticket) error
	Get(ctx context.Context, id string) (*Ticket, error)
	ListByHolder(ctx context.Context, login string) ([]*Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Ticket, error)
}

const (
	roleRoot  = "ROOT"
	roleItem  = "ITEM"
	roleExtra = "EXTRA"
)

// Record is the persisted row. Contained tickets of a bundle are stored as
// child rows pointing at their root through ParentID.
type Record struct {
	ID             string          `gorm:"primaryKey;size:120"`
	ParentID       *string         `gorm:"size:120;index"`
	Role           string          `gorm:"size:10;not null;default:'ROOT'"`
	Position       int             `gorm:"not null;default:0"`
	Kind           Kind            `gorm:"size:20;not null"`
	EventID        string          `gorm:"size:64;index;not null"`
	LocalityID     string          `gorm:"size:64;index;not null"`
	HolderLogin    string          `gorm:"size:100;index"`
	BasePrice      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ShowTime       time.Time       `gorm:"not null"`
	Transferable   bool            `gorm:"not null"`
	Used           bool            `gorm:"not null;default:false"`
	BundleCount    int             `gorm:"not null;default:0"`
	BundleDiscount decimal.Decimal `gorm:"type:numeric(5,4);not null;default:0"`
	Benefits       []string        `gorm:"serializer:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Record) TableName() string {
	return "tickets"
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, t *Ticket) error {
	return r.SaveAll(ctx, []*Ticket{t})
}

func (r *repository) SaveAll(ctx context.Context, ts []*Ticket) error {
	var rows []Record
	for _, t := range ts {
		rows = append(rows, toRecords(t)...)
	}
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to save tickets: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Ticket, error) {
	var root Record
	err := r.db.WithContext(ctx).Where("id = ? AND parent_id IS NULL", id).First(&root).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	out, err := r.assemble(ctx, []Record{root})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *repository) ListByHolder(ctx context.Context, login string) ([]*Ticket, error) {
	return r.listRoots(ctx, "holder_login = ?", login)
}

func (r *repository) ListByEvent(ctx context.Context, eventID string) ([]*Ticket, error) {
	return r.listRoots(ctx, "event_id = ?", eventID)
}

func (r *repository) listRoots(ctx context.Context, query string, arg interface{}) ([]*Ticket, error) {
	var roots []Record
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Where("parent_id IS NULL").
		Order("created_at ASC, id ASC").
		Find(&roots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return r.assemble(ctx, roots)
}

// assemble loads the children of roots in one query and rebuilds the variants
func (r *repository) assemble(ctx context.Context, roots []Record) ([]*Ticket, error) {
	if len(roots) == 0 {
		return []*Ticket{}, nil
	}
	ids := make([]string, len(roots))
	for i, root := range roots {
		ids[i] = root.ID
	}

	var children []Record
	err := r.db.WithContext(ctx).
		Where("parent_id IN ?", ids).
		Order("position ASC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load contained tickets: %w", err)
	}

	byParent := make(map[string][]Record)
	for _, child := range children {
		byParent[*child.ParentID] = append(byParent[*child.ParentID], child)
	}

	out := make([]*Ticket, len(roots))
	for i, root := range roots {
		out[i] = fromRecords(root, byParent[root.ID])
	}
	return out, nil
}

func toRecords(t *Ticket) []Record {
	root := baseRecord(t)
	root.Role = roleRoot
	rows := []Record{root}

	if t.Bundle != nil {
		rows[0].BundleCount = t.Bundle.Count
		rows[0].BundleDiscount = t.Bundle.Discount
		for i, item := range t.Bundle.Items {
			rows = append(rows, childRecord(item, t.ID, roleItem, i))
		}
	}
	if t.Premium != nil {
		rows[0].Benefits = t.Premium.Benefits
		for i, extra := range t.Premium.Extras {
			rows = append(rows, childRecord(extra, t.ID, roleExtra, i))
		}
	}
	return rows
}

func baseRecord(t *Ticket) Record {
	return Record{
		ID:           t.ID,
		Kind:         t.Kind,
		EventID:      t.EventID,
		LocalityID:   t.LocalityID,
		HolderLogin:  t.HolderLogin,
		BasePrice:    t.BasePrice,
		ShowTime:     t.ShowTime,
		Transferable: t.Transferable,
		Used:         t.Used,
	}
}

func childRecord(t *Ticket, parentID, role string, position int) Record {
	rec := baseRecord(t)
	rec.ParentID = &parentID
	rec.Role = role
	rec.Position = position
	return rec
}

func fromRecord(rec Record) *Ticket {
	return &Ticket{
		ID:           rec.ID,
		Kind:         rec.Kind,
		EventID:      rec.EventID,
		LocalityID:   rec.LocalityID,
		HolderLogin:  rec.HolderLogin,
		BasePrice:    rec.BasePrice,
		ShowTime:     rec.ShowTime,
		Transferable: rec.Transferable,
		Used:         rec.Used,
	}
}

func fromRecords(root Record, children []Record) *Ticket {
	t := fromRecord(root)
	switch root.Kind {
	case KindDiscountBundle:
		t.Bundle = &BundleDetails{Count: root.BundleCount, Discount: root.BundleDiscount}
		for _, child := range children {
			if child.Role == roleItem {
				t.Bundle.Items = append(t.Bundle.Items, fromRecord(child))
			}
		}
	case KindPremiumBundle:
		t.Premium = &PremiumDetails{Benefits: root.Benefits}
		for _, child := range children {
			if child.Role == roleExtra {
				t.Premium.Extras = append(t.Premium.Extras, fromRecord(child))
			}
		}
	}
	return t
}

// memoryRepository keeps deep copies so mutations only become visible on Save
type memoryRepository struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
	order   map[string]int
	seq     int
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		tickets: make(map[string]*Ticket),
		order:   make(map[string]int),
	}
}

func (m *memoryRepository) Save(ctx context.Context, t *Ticket) error {
	return m.SaveAll(ctx, []*Ticket{t})
}

func (m *memoryRepository) SaveAll(_ context.Context, ts []*Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range ts {
		if _, ok := m.order[t.ID]; !ok {
			m.seq++
			m.order[t.ID] = m.seq
		}
		m.tickets[t.ID] = t.Clone()
	}
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (*Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return t.Clone(), nil
}

func (m *memoryRepository) ListByHolder(_ context.Context, login string) ([]*Ticket, error) {
	return m.filter(func(t *Ticket) bool { return t.HolderLogin == login }), nil
}

func (m *memoryRepository) ListByEvent(_ context.Context, eventID string) ([]*Ticket, error) {
	return m.filter(func(t *Ticket) bool { return t.EventID == eventID }), nil
}

func (m *memoryRepository) filter(keep func(*Ticket) bool) []*Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Ticket{}
	for _, t := range m.tickets {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out
}
