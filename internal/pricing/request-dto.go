package pricing

type UpdateFeesRequest struct {
	ServicePercent string `json:"service_percent" validate:"required,numeric"`
	FixedFee       string `json:"fixed_fee" validate:"required,numeric"`
}
