package marketplace

import (
	"boletamaster/internal/counteroffers"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"

	"github.com/shopspring/decimal"
)

type PurchaseInput struct {
	Buyer      string
	EventID    string
	LocalityID string
	Quantity   int

	// Kind defaults to SIMPLE. A discount bundle packs Quantity admissions
	// into one ticket at the locality's bundle discount; a premium bundle is
	// always a single ticket.
	Kind     tickets.Kind
	Benefits []string
}

type PurchaseResult struct {
	Purchase  *purchases.Purchase
	Tickets   []*tickets.Ticket
	Breakdown pricing.Breakdown
}

type TransferInput struct {
	TicketID string
	From     string
	Password string
	To       string
}

type ResaleResult struct {
	Listing  *resale.Listing
	Ticket   *tickets.Ticket
	Purchase *purchases.Purchase
}

type AcceptResult struct {
	Resolution *counteroffers.Resolution
	Listing    *resale.Listing
	Ticket     *tickets.Ticket
	Purchase   *purchases.Purchase
}

type RefundQuote struct {
	TicketID            string          `json:"ticket_id"`
	BasePrice           decimal.Decimal `json:"base_price"`
	FixedFee            decimal.Decimal `json:"fixed_fee"`
	IsEventCancellation bool            `json:"is_event_cancellation"`
	Amount              decimal.Decimal `json:"amount"`
}

// CancellationSummary reports what an event cancellation paid out
type CancellationSummary struct {
	EventID           string          `json:"event_id"`
	TicketsRefunded   int             `json:"tickets_refunded"`
	TotalRefunded     decimal.Decimal `json:"total_refunded"`
	ListingsClosed    int             `json:"listings_closed"`
	PurchasesRefunded int64           `json:"purchases_refunded"`
}
