package venues

import "time"

type CreateVenueRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Location string `json:"location" validate:"max=255"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

type CreateLocalityRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Numbered       bool   `json:"numbered"`
	Capacity       int    `json:"capacity" validate:"required,gt=0"`
	BasePrice      string `json:"base_price" validate:"required,numeric"`
	BundleDiscount string `json:"bundle_discount" validate:"omitempty,numeric"`
}

type CreateOfferRequest struct {
	Description string    `json:"description" validate:"max=255"`
	Discount    string    `json:"discount" validate:"required,numeric"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	ExpiresAt   time.Time `json:"expires_at" validate:"required"`
}
