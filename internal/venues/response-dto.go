package venues

import "github.com/shopspring/decimal"

type LocalityResponse struct {
	Locality
	ActiveDiscount *decimal.Decimal `json:"active_discount,omitempty"`
}
