package analytics

import (
	"context"
	"fmt"
	"sort"

	"boletamaster/internal/purchases"
	"boletamaster/internal/venues"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository aggregates sales figures. Only APPROVED primary purchases count
// towards earnings; secondary sales pay the seller, not the platform.
type Repository interface {
	FeesByEvent(ctx context.Context, eventIDs []string) ([]EventEarnings, error)
	RevenueByEvent(ctx context.Context, eventIDs []string) (map[string]decimal.Decimal, error)
	LocalitySales(ctx context.Context, eventIDs []string) ([]LocalitySales, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) primarySales(ctx context.Context, eventIDs []string) *gorm.DB {
	db := r.db.WithContext(ctx).Table("purchases").
		Where("kind = ? AND status = ?", purchases.KindPrimary, purchases.StatusApproved)
	if eventIDs != nil {
		db = db.Where("event_id IN ?", eventIDs)
	}
	return db
}

// FeesByEvent returns one row per event with sales; nil eventIDs means all
// events
func (r *repository) FeesByEvent(ctx context.Context, eventIDs []string) ([]EventEarnings, error) {
	if eventIDs != nil && len(eventIDs) == 0 {
		return []EventEarnings{}, nil
	}
	var rows []EventEarnings
	err := r.primarySales(ctx, eventIDs).
		Select("event_id, COUNT(*) AS purchases, " +
			"COALESCE(SUM(service_fee), 0) AS service_fees, " +
			"COALESCE(SUM(issuance_fees), 0) AS issuance_fees, " +
			"COALESCE(SUM(service_fee + issuance_fees), 0) AS total").
		Group("event_id").
		Order("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platform fees: %w", err)
	}
	return rows, nil
}

func (r *repository) RevenueByEvent(ctx context.Context, eventIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EventID string
		Revenue decimal.Decimal
	}
	err := r.primarySales(ctx, eventIDs).
		Select("event_id, COALESCE(SUM(subtotal), 0) AS revenue").
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate event revenue: %w", err)
	}
	for _, row := range rows {
		out[row.EventID] = row.Revenue
	}
	return out, nil
}

func (r *repository) LocalitySales(ctx context.Context, eventIDs []string) ([]LocalitySales, error) {
	if len(eventIDs) == 0 {
		return []LocalitySales{}, nil
	}
	var rows []LocalitySales
	err := r.db.WithContext(ctx).Table("localities").
		Select("id AS locality_id, event_id, name, capacity, capacity - available AS sold").
		Where("event_id IN ?", eventIDs).
		Order("event_id, name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load locality sales: %w", err)
	}
	for i := range rows {
		rows[i].SoldPercent = soldPercent(rows[i].Sold, rows[i].Capacity)
	}
	return rows, nil
}

// PurchaseSource and LocalitySource are what the in-memory aggregation reads
type PurchaseSource interface {
	List(ctx context.Context, query purchases.ListQuery) ([]purchases.Purchase, error)
}

type LocalitySource interface {
	ListLocalities(ctx context.Context, eventID string) ([]venues.Locality, error)
}

type sourceRepository struct {
	purchases  PurchaseSource
	localities LocalitySource
}

// NewSourceRepository aggregates in process over the purchase and locality
// stores, for deployments without a database
func NewSourceRepository(purchases PurchaseSource, localities LocalitySource) Repository {
	return &sourceRepository{purchases: purchases, localities: localities}
}

func (s *sourceRepository) approvedPrimary(ctx context.Context, eventIDs []string) ([]purchases.Purchase, error) {
	all, err := s.purchases.List(ctx, purchases.ListQuery{Kind: purchases.KindPrimary})
	if err != nil {
		return nil, err
	}
	var wanted map[string]bool
	if eventIDs != nil {
		wanted = make(map[string]bool, len(eventIDs))
		for _, id := range eventIDs {
			wanted[id] = true
		}
	}
	var out []purchases.Purchase
	for _, p := range all {
		if p.Status != purchases.StatusApproved {
			continue
		}
		if wanted != nil && !wanted[p.EventID] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *sourceRepository) FeesByEvent(ctx context.Context, eventIDs []string) ([]EventEarnings, error) {
	sales, err := s.approvedPrimary(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[string]*EventEarnings)
	for _, p := range sales {
		row, ok := byEvent[p.EventID]
		if !ok {
			row = &EventEarnings{EventID: p.EventID, ServiceFees: decimal.Zero, IssuanceFees: decimal.Zero, Total: decimal.Zero}
			byEvent[p.EventID] = row
		}
		row.Purchases++
		row.ServiceFees = row.ServiceFees.Add(p.ServiceFee)
		row.IssuanceFees = row.IssuanceFees.Add(p.IssuanceFees)
		row.Total = row.Total.Add(p.PlatformFees())
	}
	out := make([]EventEarnings, 0, len(byEvent))
	for _, row := range byEvent {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (s *sourceRepository) RevenueByEvent(ctx context.Context, eventIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	if len(eventIDs) == 0 {
		return out, nil
	}
	sales, err := s.approvedPrimary(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range sales {
		out[p.EventID] = out[p.EventID].Add(p.Subtotal)
	}
	return out, nil
}

func (s *sourceRepository) LocalitySales(ctx context.Context, eventIDs []string) ([]LocalitySales, error) {
	out := []LocalitySales{}
	for _, eventID := range eventIDs {
		locs, err := s.localities.ListLocalities(ctx, eventID)
		if err != nil {
			return nil, err
		}
		sort.Slice(locs, func(i, j int) bool { return locs[i].Name < locs[j].Name })
		for _, l := range locs {
			sold := l.Capacity - l.Available
			out = append(out, LocalitySales{
				LocalityID:  l.ID,
				EventID:     l.EventID,
				Name:        l.Name,
				Capacity:    l.Capacity,
				Sold:        sold,
				SoldPercent: soldPercent(sold, l.Capacity),
			})
		}
	}
	return out, nil
}
