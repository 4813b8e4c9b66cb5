package marketplace

type BuyPrimaryRequest struct {
	EventID    string   `json:"event_id" validate:"required"`
	LocalityID string   `json:"locality_id" validate:"required"`
	Quantity   int      `json:"quantity" validate:"required,min=1"`
	Kind       string   `json:"kind" validate:"omitempty,oneof=SIMPLE DISCOUNT_BUNDLE PREMIUM_BUNDLE"`
	Benefits   []string `json:"benefits" validate:"omitempty,dive,min=1,max=120"`
}

type TransferRequest struct {
	Password string `json:"password" validate:"required"`
	To       string `json:"to" validate:"required,min=3,max=100"`
}

type RedeemRequest struct {
	Index *int `json:"index" validate:"omitempty,min=0"`
}

type CreateListingRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Price    string `json:"price" validate:"required,numeric"`
}

type CounterofferRequest struct {
	Price string `json:"price" validate:"required,numeric"`
}

type PreAllocateRequest struct {
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	BasePrice string `json:"base_price" validate:"required,numeric"`
}
