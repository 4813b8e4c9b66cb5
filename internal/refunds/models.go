package refunds

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// RefundRequest is a buyer's hardship claim on one held ticket. Approval
// pays the full base price.
type RefundRequest struct {
	ID           string           `json:"id" gorm:"primaryKey;size:64"`
	TicketID     string           `json:"ticket_id" gorm:"size:120;not null;index;uniqueIndex:idx_refund_request_pending,where:status = 'PENDING'"`
	EventID      string           `json:"event_id" gorm:"size:64;not null;index"`
	HolderLogin  string           `json:"holder_login" gorm:"size:100;not null;index"`
	Reason       string           `json:"reason" gorm:"size:500;not null"`
	Status       Status           `json:"status" gorm:"size:20;not null;index;check:status IN ('PENDING', 'APPROVED', 'REJECTED')"`
	Amount       *decimal.Decimal `json:"amount,omitempty" gorm:"type:numeric(12,2)"`
	DecidedBy    string           `json:"decided_by,omitempty" gorm:"size:100"`
	DecisionNote string           `json:"decision_note,omitempty" gorm:"size:500"`
	CreatedAt    time.Time        `json:"created_at"`
	DecidedAt    *time.Time       `json:"decided_at,omitempty"`
}

func (RefundRequest) TableName() string {
	return "refund_requests"
}

func (r *RefundRequest) IsPending() bool {
	return r.Status == StatusPending
}
