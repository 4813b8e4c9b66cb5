package marketplace

import (
	"boletamaster/internal/counteroffers"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"
)

type PurchaseResponse struct {
	Purchase  *purchases.Purchase `json:"purchase"`
	Tickets   []*tickets.Ticket   `json:"tickets"`
	Breakdown *pricing.Breakdown  `json:"breakdown,omitempty"`
}

func ToPurchaseResponse(r *PurchaseResult) PurchaseResponse {
	out := PurchaseResponse{Purchase: r.Purchase, Tickets: r.Tickets}
	if r.Breakdown.TicketCount > 0 {
		b := r.Breakdown
		out.Breakdown = &b
	}
	return out
}

type ResaleResponse struct {
	Listing  *resale.Listing     `json:"listing"`
	Ticket   *tickets.Ticket     `json:"ticket"`
	Purchase *purchases.Purchase `json:"purchase"`
}

type AcceptResponse struct {
	Accepted *counteroffers.Counteroffer  `json:"accepted"`
	Rejected []counteroffers.Counteroffer `json:"auto_rejected"`
	Listing  *resale.Listing              `json:"listing"`
	Ticket   *tickets.Ticket              `json:"ticket"`
	Purchase *purchases.Purchase          `json:"purchase"`
}

func ToAcceptResponse(r *AcceptResult) AcceptResponse {
	out := AcceptResponse{
		Listing:  r.Listing,
		Ticket:   r.Ticket,
		Purchase: r.Purchase,
		Rejected: []counteroffers.Counteroffer{},
	}
	if r.Resolution != nil {
		out.Accepted = r.Resolution.Accepted
		if r.Resolution.Rejected != nil {
			out.Rejected = r.Resolution.Rejected
		}
	}
	return out
}
