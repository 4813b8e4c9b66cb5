package counteroffers

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

type Counteroffer struct {
	ID         string          `json:"id" gorm:"primaryKey;size:64"`
	ListingID  string          `json:"listing_id" gorm:"size:64;not null;index;uniqueIndex:idx_counteroffer_pending,where:status = 'PENDING'"`
	BuyerLogin string          `json:"buyer_login" gorm:"size:100;not null;index;uniqueIndex:idx_counteroffer_pending,where:status = 'PENDING'"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Status     Status          `json:"status" gorm:"size:20;not null;index"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

func (c *Counteroffer) IsPending() bool {
	return c.Status == StatusPending
}

// Resolution is the outcome of accepting one counteroffer on a listing
type Resolution struct {
	Accepted *Counteroffer
	Rejected []Counteroffer
}
