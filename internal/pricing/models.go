package pricing

import (
	"github.com/shopspring/decimal"
)

// Breakdown itemizes a purchase total
type Breakdown struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ServiceFee   decimal.Decimal `json:"service_fee"`
	IssuanceFees decimal.Decimal `json:"issuance_fees"`
	Total        decimal.Decimal `json:"total"`
	TicketCount  int             `json:"ticket_count"`
}

// Fees is the platform fee schedule set by administrators
type Fees struct {
	ServicePercent decimal.Decimal `json:"service_percent"`
	FixedFee       decimal.Decimal `json:"fixed_fee"`
}

func (f Fees) Validate() error {
	if f.ServicePercent.IsNegative() || f.FixedFee.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}

// FeeRecord persists the current schedule as a single row
type FeeRecord struct {
	ID             uint            `gorm:"primaryKey"`
	ServicePercent decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	FixedFee       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	UpdatedBy      string          `gorm:"size:100"`
}

func (FeeRecord) TableName() string {
	return "fee_schedules"
}
