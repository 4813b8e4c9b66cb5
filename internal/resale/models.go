package resale

import (
	"time"

	"boletamaster/internal/tickets"

	"github.com/shopspring/decimal"
)

type DeactivationReason string

const (
	ReasonSold                 DeactivationReason = "SOLD"
	ReasonCounterofferAccepted DeactivationReason = "COUNTEROFFER_ACCEPTED"
	ReasonWithdrawn            DeactivationReason = "WITHDRAWN"
	ReasonRemovedByAdmin       DeactivationReason = "REMOVED_BY_ADMIN"
	ReasonTicketTransferred    DeactivationReason = "TICKET_TRANSFERRED"
	ReasonTicketInvalidated    DeactivationReason = "TICKET_INVALIDATED"
)

// Listing offers one ticket for resale. Once inactive it is never reopened.
type Listing struct {
	ID                 string             `json:"id" gorm:"primaryKey;size:64"`
	TicketID           string             `json:"ticket_id" gorm:"size:120;not null;index;uniqueIndex:idx_listing_active_ticket,where:active"`
	EventID            string             `json:"event_id" gorm:"size:64;index"`
	SellerLogin        string             `json:"seller_login" gorm:"size:100;not null;index"`
	Price              decimal.Decimal    `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt          time.Time          `json:"created_at"`
	Active             bool               `json:"active" gorm:"not null;index"`
	DeactivatedAt      *time.Time         `json:"deactivated_at,omitempty"`
	DeactivationReason DeactivationReason `json:"deactivation_reason,omitempty" gorm:"size:40"`
}

// CanResell reports whether the listing may still be bought: active, the
// seller still holds the ticket, which is transferable and not premium
func CanResell(l *Listing, t *tickets.Ticket, now time.Time) bool {
	return l.Active &&
		t.Kind != tickets.KindPremiumBundle &&
		t.HolderLogin == l.SellerLogin &&
		t.IsTransferableAt(now)
}
