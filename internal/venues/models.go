package venues

import (
	"time"

	"github.com/shopspring/decimal"
)

type Venue struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"not null;size:255;uniqueIndex"`
	Location    string    `json:"location" gorm:"size:255"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	Approved    bool      `json:"approved" gorm:"not null;default:false"`
	SuggestedBy string    `json:"suggested_by,omitempty" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Locality is a priced zone of a venue for one event
type Locality struct {
	ID        string          `json:"id" gorm:"primaryKey;size:64"`
	EventID   string          `json:"event_id" gorm:"size:64;not null;index;uniqueIndex:idx_locality_event_name"`
	VenueID   string          `json:"venue_id" gorm:"size:64;not null"`
	Name      string          `json:"name" gorm:"size:100;not null;uniqueIndex:idx_locality_event_name"`
	Numbered  bool            `json:"numbered" gorm:"not null;default:false"`
	Capacity  int             `json:"capacity" gorm:"not null;check:capacity > 0"`
	Available int             `json:"available" gorm:"not null;check:available >= 0"`
	BasePrice decimal.Decimal `json:"base_price" gorm:"type:numeric(12,2);not null"`
	// BundleDiscount is the fraction taken off each admission of a
	// discount bundle sold in this locality
	BundleDiscount decimal.Decimal `json:"bundle_discount" gorm:"type:numeric(5,4);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// Offer is a time-boxed percentage discount on a locality
type Offer struct {
	ID          string          `json:"id" gorm:"primaryKey;size:64"`
	LocalityID  string          `json:"locality_id" gorm:"size:64;not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:numeric(5,4);not null"`
	StartsAt    time.Time       `json:"starts_at" gorm:"not null"`
	ExpiresAt   time.Time       `json:"expires_at" gorm:"not null"`
	Active      bool            `json:"active" gorm:"not null;default:true"`
	CreatedBy   string          `json:"created_by" gorm:"size:100"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (o *Offer) InEffectAt(now time.Time) bool {
	return o.Active && !now.Before(o.StartsAt) && !now.After(o.ExpiresAt)
}

// CombineDiscounts stacks offers multiplicatively: 1 - prod(1 - d)
func CombineDiscounts(offers []Offer, now time.Time) (decimal.Decimal, bool) {
	remaining := decimal.NewFromInt(1)
	found := false
	for i := range offers {
		if !offers[i].InEffectAt(now) {
			continue
		}
		found = true
		remaining = remaining.Mul(decimal.NewFromInt(1).Sub(offers[i].Discount))
	}
	if !found {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).Sub(remaining), true
}
