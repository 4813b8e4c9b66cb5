package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventEarnings is what the platform kept from one event's primary sales
type EventEarnings struct {
	EventID      string          `json:"event_id"`
	EventName    string          `json:"event_name,omitempty"`
	Purchases    int64           `json:"purchases"`
	ServiceFees  decimal.Decimal `json:"service_fees"`
	IssuanceFees decimal.Decimal `json:"issuance_fees"`
	Total        decimal.Decimal `json:"total"`
}

type PlatformEarnings struct {
	Purchases    int64           `json:"purchases"`
	ServiceFees  decimal.Decimal `json:"service_fees"`
	IssuanceFees decimal.Decimal `json:"issuance_fees"`
	Total        decimal.Decimal `json:"total"`
	Events       []EventEarnings `json:"events"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// LocalitySales is the sell-through of one locality. Sold counts every
// issued seat, preallocated ones included.
type LocalitySales struct {
	LocalityID  string          `json:"locality_id"`
	EventID     string          `json:"event_id"`
	Name        string          `json:"name"`
	Capacity    int             `json:"capacity"`
	Sold        int             `json:"sold"`
	SoldPercent decimal.Decimal `json:"sold_percent"`
}

type OrganizerEventEarnings struct {
	EventID     string          `json:"event_id"`
	EventName   string          `json:"event_name"`
	Status      string          `json:"status"`
	Revenue     decimal.Decimal `json:"revenue"`
	TicketsSold int             `json:"tickets_sold"`
	Localities  []LocalitySales `json:"localities"`
}

type OrganizerEarnings struct {
	OrganizerLogin string                   `json:"organizer_login"`
	Revenue        decimal.Decimal          `json:"revenue"`
	TicketsSold    int                      `json:"tickets_sold"`
	Events         []OrganizerEventEarnings `json:"events"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// soldPercent is sold/capacity as a percentage with two decimals
func soldPercent(sold, capacity int) decimal.Decimal {
	if capacity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sold) * 100).Div(decimal.NewFromInt(int64(capacity))).Round(2)
}
