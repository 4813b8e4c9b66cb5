package refunds

type CreateRefundRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=10,max=500"`
}

type RejectRefundRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type CancelEventRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
