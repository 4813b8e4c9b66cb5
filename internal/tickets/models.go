package tickets

import (
	"fmt"
	"log/slog"
	"time"

	"boletamaster/pkg/logger"

	"github.com/shopspring/decimal"
)

// Ticket is a closed tagged variant: Kind selects which of Bundle or Premium
// is populated. Validity and transferability are computed by one dispatch
// function each, so every variant rule lives below.
type Ticket struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	EventID      string          `json:"event_id"`
	LocalityID   string          `json:"locality_id"`
	HolderLogin  string          `json:"holder_login"`
	BasePrice    decimal.Decimal `json:"base_price"`
	ShowTime     time.Time       `json:"show_time"`
	Transferable bool            `json:"transferable"`
	Used         bool            `json:"used"`

	Bundle  *BundleDetails  `json:"bundle,omitempty"`
	Premium *PremiumDetails `json:"premium,omitempty"`
}

// BundleDetails is the payload of a discount bundle
type BundleDetails struct {
	Count    int             `json:"count"`
	Discount decimal.Decimal `json:"discount"`
	Items    []*Ticket       `json:"items"`
}

// PremiumDetails is the payload of a premium bundle
type PremiumDetails struct {
	Benefits []string  `json:"benefits"`
	Extras   []*Ticket `json:"extras"`
}

// NewSimple creates a transferable single-admission ticket
func NewSimple(id, eventID, localityID string, basePrice decimal.Decimal, showTime time.Time) (*Ticket, error) {
	if basePrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	return &Ticket{
		ID:           id,
		Kind:         KindSimple,
		EventID:      eventID,
		LocalityID:   localityID,
		BasePrice:    basePrice,
		ShowTime:     showTime,
		Transferable: true,
	}, nil
}

// NewDiscountBundle creates a bundle of count individual tickets priced at
// unitBase*(1-discount) each. The bundle's own price is the sum of its items.
func NewDiscountBundle(id, eventID, localityID string, unitBase decimal.Decimal, showTime time.Time, count int, discount decimal.Decimal) (*Ticket, error) {
	if unitBase.IsNegative() {
		return nil, ErrNegativePrice
	}
	if count < 1 {
		return nil, ErrInvalidCount
	}
	if discount.IsNegative() || discount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, ErrInvalidDiscount
	}

	factor := decimal.NewFromInt(1).Sub(discount)
	itemPrice := unitBase.Mul(factor)

	items := make([]*Ticket, 0, count)
	for i := 1; i <= count; i++ {
		items = append(items, &Ticket{
			ID:           fmt.Sprintf("%s-IND-%d", id, i),
			Kind:         KindSimple,
			EventID:      eventID,
			LocalityID:   localityID,
			BasePrice:    itemPrice,
			ShowTime:     showTime,
			Transferable: true,
		})
	}

	return &Ticket{
		ID:           id,
		Kind:         KindDiscountBundle,
		EventID:      eventID,
		LocalityID:   localityID,
		BasePrice:    unitBase.Mul(decimal.NewFromInt(int64(count))).Mul(factor),
		ShowTime:     showTime,
		Transferable: true,
		Bundle: &BundleDetails{
			Count:    count,
			Discount: discount,
			Items:    items,
		},
	}, nil
}

// NewPremiumBundle creates a non-transferable ticket with benefits and extra admissions
func NewPremiumBundle(id, eventID, localityID string, basePrice decimal.Decimal, showTime time.Time, benefits []string, extras []*Ticket) (*Ticket, error) {
	if basePrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	return &Ticket{
		ID:           id,
		Kind:         KindPremiumBundle,
		EventID:      eventID,
		LocalityID:   localityID,
		BasePrice:    basePrice,
		ShowTime:     showTime,
		Transferable: false,
		Premium: &PremiumDetails{
			Benefits: append([]string(nil), benefits...),
			Extras:   extras,
		},
	}, nil
}

func (t *Ticket) IsValid() bool {
	return t.IsValidAt(time.Now())
}

// IsValidAt reports validity at now.
// Simple and premium: not used and show time in the future.
// Discount bundle: at least one contained ticket is valid.
func (t *Ticket) IsValidAt(now time.Time) bool {
	switch t.Kind {
	case KindDiscountBundle:
		for _, item := range t.items() {
			if item.IsValidAt(now) {
				return true
			}
		}
		return false
	default:
		return !t.Used && t.ShowTime.After(now)
	}
}

func (t *Ticket) IsTransferable() bool {
	return t.IsTransferableAt(time.Now())
}

// IsTransferableAt reports transferability at now.
// Simple: flag set and valid.
// Discount bundle: flag set and every contained ticket transferable, unused and valid.
// Premium: never.
func (t *Ticket) IsTransferableAt(now time.Time) bool {
	switch t.Kind {
	case KindPremiumBundle:
		return false
	case KindDiscountBundle:
		items := t.items()
		if !t.Transferable || len(items) == 0 {
			return false
		}
		for _, item := range items {
			if item.Used || !item.Transferable || !item.IsValidAt(now) {
				return false
			}
		}
		return true
	default:
		return t.Transferable && t.IsValidAt(now)
	}
}

// MarkUsed flags the ticket, and everything it contains, as used.
// It never fails: on an invalid ticket it only logs and reports false.
func (t *Ticket) MarkUsed() bool {
	return t.MarkUsedAt(time.Now())
}

func (t *Ticket) MarkUsedAt(now time.Time) bool {
	if !t.IsValidAt(now) {
		logger.GetDefault().Warn("ticket is not valid, ignoring mark as used",
			slog.String("ticket_id", t.ID),
			slog.String("kind", t.Kind.String()),
			slog.Bool("used", t.Used),
		)
		return false
	}
	t.Used = true
	for _, item := range t.items() {
		item.Used = true
	}
	if t.Premium != nil {
		for _, extra := range t.Premium.Extras {
			extra.Used = true
		}
	}
	return true
}

// AvailableCount returns how many admissions are still valid
func (t *Ticket) AvailableCount() int {
	return t.AvailableCountAt(time.Now())
}

func (t *Ticket) AvailableCountAt(now time.Time) int {
	if t.Kind != KindDiscountBundle {
		if t.IsValidAt(now) {
			return 1
		}
		return 0
	}
	n := 0
	for _, item := range t.items() {
		if item.IsValidAt(now) {
			n++
		}
	}
	return n
}

// IndividualAt returns the contained ticket at a zero-based index
func (t *Ticket) IndividualAt(index int) (*Ticket, error) {
	if t.Kind != KindDiscountBundle {
		return nil, ErrNotBundle
	}
	items := t.items()
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	return items[index], nil
}

// UseIndividual redeems one admission of a bundle. Once every item is used
// the bundle itself is flagged used.
func (t *Ticket) UseIndividual(index int, now time.Time) error {
	item, err := t.IndividualAt(index)
	if err != nil {
		return err
	}
	if !item.IsValidAt(now) {
		return ErrTicketNotValid
	}
	item.Used = true

	for _, other := range t.items() {
		if !other.Used {
			return nil
		}
	}
	t.Used = true
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.Bundle != nil {
		b := *t.Bundle
		b.Items = cloneAll(t.Bundle.Items)
		c.Bundle = &b
	}
	if t.Premium != nil {
		p := *t.Premium
		p.Benefits = append([]string(nil), t.Premium.Benefits...)
		p.Extras = cloneAll(t.Premium.Extras)
		c.Premium = &p
	}
	return &c
}

// SetHolder moves the ticket and everything it contains to login
func (t *Ticket) SetHolder(login string) {
	t.HolderLogin = login
	for _, item := range t.items() {
		item.HolderLogin = login
	}
	if t.Premium != nil {
		for _, extra := range t.Premium.Extras {
			extra.HolderLogin = login
		}
	}
}

func (t *Ticket) items() []*Ticket {
	if t.Bundle == nil {
		return nil
	}
	return t.Bundle.Items
}

func cloneAll(in []*Ticket) []*Ticket {
	if in == nil {
		return nil
	}
	out := make([]*Ticket, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
