package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"
	"boletamaster/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactor runs each unit of work in one database transaction with
// every repository bound to it
type GormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Stores{
			Tickets:   tickets.NewRepository(tx),
			Listings:  resale.NewRepository(tx),
			Offers:    counteroffers.NewRepository(tx),
			Purchases: purchases.NewRepository(tx),
			Wallets:   users.NewRepository(tx),
			Inventory: localityInventory{repo: venues.NewRepository(tx)},
		})
	})
}

// localityInventory decrements availability with a conditional update
type localityInventory struct {
	repo venues.Repository
}

func (i localityInventory) DecrementLocalityAvailability(ctx context.Context, localityID string, qty int) error {
	if qty < 1 {
		return venues.ErrInvalidQuantity
	}
	return i.repo.AdjustAvailable(ctx, localityID, -qty)
}

// seatReleaser is implemented by inventories that can hand seats back
type seatReleaser interface {
	IncrementLocalityAvailability(ctx context.Context, localityID string, qty int) error
}

// MemoryTransactor serializes units of work over in-memory stores. Every
// write goes through a journaled store; on failure the journal is replayed
// backwards so the stores look as they did before the unit started.
type MemoryTransactor struct {
	mu     sync.Mutex
	stores Stores
}

func NewMemoryTransactor(stores Stores) *MemoryTransactor {
	return &MemoryTransactor{stores: stores}
}

func (t *MemoryTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	scoped := t.stores
	scoped.Wallets = &journaledWallets{Repository: t.stores.Wallets, journal: j}
	scoped.Tickets = &journaledTickets{Repository: t.stores.Tickets, journal: j}
	scoped.Inventory = &journaledInventory{inner: t.stores.Inventory, journal: j}
	scoped.Listings = &journaledListings{Repository: t.stores.Listings, journal: j}
	scoped.Offers = &journaledOffers{Repository: t.stores.Offers, journal: j}
	scoped.Purchases = &journaledPurchases{Repository: t.stores.Purchases, journal: j}

	if err := fn(ctx, scoped); err != nil {
		j.rollback(ctx)
		return err
	}
	return nil
}

type journal struct {
	undo []func(ctx context.Context) error
}

func (j *journal) record(undo func(ctx context.Context) error) {
	j.undo = append(j.undo, undo)
}

func (j *journal) rollback(ctx context.Context) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		if err := j.undo[i](ctx); err != nil {
			logger.GetDefault().Error("failed to roll back in-memory unit of work", slog.String("error", err.Error()))
		}
	}
}

type journaledWallets struct {
	users.Repository
	journal *journal
}

func (w *journaledWallets) Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error) {
	ok, err := w.Repository.Debit(ctx, login, amount)
	if ok && err == nil {
		w.journal.record(func(ctx context.Context) error {
			return w.Repository.Credit(ctx, login, amount)
		})
	}
	return ok, err
}

func (w *journaledWallets) Credit(ctx context.Context, login string, amount decimal.Decimal) error {
	if err := w.Repository.Credit(ctx, login, amount); err != nil {
		return err
	}
	w.journal.record(func(ctx context.Context) error {
		ok, err := w.Repository.Debit(ctx, login, amount)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot take back credit of %s from %s: balance already spent", amount.StringFixed(2), login)
		}
		return nil
	})
	return nil
}

type journaledInventory struct {
	inner   Inventory
	journal *journal
}

func (i *journaledInventory) DecrementLocalityAvailability(ctx context.Context, localityID string, qty int) error {
	if err := i.inner.DecrementLocalityAvailability(ctx, localityID, qty); err != nil {
		return err
	}
	if r, ok := i.inner.(seatReleaser); ok {
		i.journal.record(func(ctx context.Context) error {
			return r.IncrementLocalityAvailability(ctx, localityID, qty)
		})
	}
	return nil
}

// journaledTickets remembers the previous state of every ticket it overwrites
type journaledTickets struct {
	tickets.Repository
	journal *journal
}

func (r *journaledTickets) Save(ctx context.Context, t *tickets.Ticket) error {
	return r.SaveAll(ctx, []*tickets.Ticket{t})
}

func (r *journaledTickets) SaveAll(ctx context.Context, ts []*tickets.Ticket) error {
	var previous []*tickets.Ticket
	for _, t := range ts {
		prev, err := r.Repository.Get(ctx, t.ID)
		if err == nil {
			previous = append(previous, prev)
		}
	}
	if err := r.Repository.SaveAll(ctx, ts); err != nil {
		return err
	}
	if len(previous) > 0 {
		r.journal.record(func(ctx context.Context) error {
			return r.Repository.SaveAll(ctx, previous)
		})
	}
	return nil
}

// journaledListings restores overwritten listings and drops created ones
type journaledListings struct {
	resale.Repository
	journal *journal
}

func (r *journaledListings) Create(ctx context.Context, l *resale.Listing) error {
	if err := r.Repository.Create(ctx, l); err != nil {
		return err
	}
	id := l.ID
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.Delete(ctx, id)
	})
	return nil
}

func (r *journaledListings) Update(ctx context.Context, l *resale.Listing) error {
	prev, err := r.Repository.Get(ctx, l.ID)
	if err != nil {
		return err
	}
	if err := r.Repository.Update(ctx, l); err != nil {
		return err
	}
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.Update(ctx, prev)
	})
	return nil
}

type journaledOffers struct {
	counteroffers.Repository
	journal *journal
}

func (r *journaledOffers) Create(ctx context.Context, o *counteroffers.Counteroffer) error {
	if err := r.Repository.Create(ctx, o); err != nil {
		return err
	}
	id := o.ID
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.Delete(ctx, id)
	})
	return nil
}

func (r *journaledOffers) UpdateAll(ctx context.Context, offers []*counteroffers.Counteroffer) error {
	previous := make([]*counteroffers.Counteroffer, 0, len(offers))
	for _, o := range offers {
		prev, err := r.Repository.Get(ctx, o.ID)
		if err != nil {
			return err
		}
		previous = append(previous, prev)
	}
	if err := r.Repository.UpdateAll(ctx, offers); err != nil {
		return err
	}
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.UpdateAll(ctx, previous)
	})
	return nil
}

type journaledPurchases struct {
	purchases.Repository
	journal *journal
}

func (r *journaledPurchases) Create(ctx context.Context, p *purchases.Purchase) error {
	if err := r.Repository.Create(ctx, p); err != nil {
		return err
	}
	id := p.ID
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.Delete(ctx, id)
	})
	return nil
}

func (r *journaledPurchases) MarkRefunded(ctx context.Context, eventID string, at time.Time) (int64, error) {
	before, err := r.Repository.List(ctx, purchases.ListQuery{EventID: eventID})
	if err != nil {
		return 0, err
	}
	n, err := r.Repository.MarkRefunded(ctx, eventID, at)
	if err != nil {
		return n, err
	}
	var approved []purchases.Purchase
	for _, p := range before {
		if p.Status == purchases.StatusApproved {
			approved = append(approved, p)
		}
	}
	r.journal.record(func(ctx context.Context) error {
		for i := range approved {
			if err := r.Repository.Update(ctx, &approved[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return n, nil
}

func (r *journaledPurchases) CreateRefunds(ctx context.Context, refunds []purchases.Refund) error {
	if err := r.Repository.CreateRefunds(ctx, refunds); err != nil {
		return err
	}
	ids := make([]string, 0, len(refunds))
	for _, rf := range refunds {
		ids = append(ids, rf.ID)
	}
	r.journal.record(func(ctx context.Context) error {
		return r.Repository.DeleteRefunds(ctx, ids)
	})
	return nil
}
