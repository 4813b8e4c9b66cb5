package purchases

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records one balance-funded acquisition of tickets
type Purchase struct {
	ID           string          `json:"id" gorm:"primaryKey;size:64"`
	Reference    string          `json:"reference" gorm:"size:32;uniqueIndex;not null"`
	Kind         Kind            `json:"kind" gorm:"size:20;not null;index"`
	BuyerLogin   string          `json:"buyer_login" gorm:"size:100;not null;index"`
	SellerLogin  string          `json:"seller_login,omitempty" gorm:"size:100;index"`
	EventID      string          `json:"event_id" gorm:"size:64;not null;index"`
	LocalityID   string          `json:"locality_id" gorm:"size:64;index"`
	ListingID    string          `json:"listing_id,omitempty" gorm:"size:64"`
	TicketIDs    []string        `json:"ticket_ids" gorm:"serializer:json"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2);not null"`
	ServiceFee   decimal.Decimal `json:"service_fee" gorm:"type:numeric(14,2);not null;default:0"`
	IssuanceFees decimal.Decimal `json:"issuance_fees" gorm:"type:numeric(14,2);not null;default:0"`
	Total        decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null"`
	Status       Status          `json:"status" gorm:"size:20;not null;default:'APPROVED'"`
	CreatedAt    time.Time       `json:"created_at"`
	RefundedAt   *time.Time      `json:"refunded_at,omitempty"`
}

// PlatformFees is what the platform keeps from this purchase
func (p *Purchase) PlatformFees() decimal.Decimal {
	return p.ServiceFee.Add(p.IssuanceFees)
}

// Refund records money returned to a ticket holder
type Refund struct {
	ID          string          `json:"id" gorm:"primaryKey;size:64"`
	TicketID    string          `json:"ticket_id" gorm:"size:120;not null;index"`
	EventID     string          `json:"event_id" gorm:"size:64;not null;index"`
	LocalityID  string          `json:"locality_id" gorm:"size:64;index"`
	HolderLogin string          `json:"holder_login" gorm:"size:100;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Reason      RefundReason    `json:"reason" gorm:"size:20;not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ListQuery struct {
	BuyerLogin string
	EventID    string
	Kind       Kind
}

// NewReference generates a human friendly purchase reference, e.g. BMS-20261017-QWERTY
func NewReference(now time.Time) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}
	return fmt.Sprintf("BMS-%s-%s", now.Format("20060102"), string(randomPart)), nil
}
