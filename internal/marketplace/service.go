package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boletamaster/internal/counteroffers"
	"boletamaster/internal/notifications"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/resale"
	"boletamaster/internal/shared/constants"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/pkg/cache"
	"boletamaster/pkg/logger"

	"github.com/shopspring/decimal"
)

// Service is the marketplace orchestrator. It is the only component that
// changes ticket ownership or used flags, and every operation either
// completes or leaves nothing behind.
type Service interface {
	BuyPrimary(ctx context.Context, in PurchaseInput) (*PurchaseResult, error)
	PreAllocate(ctx context.Context, organizer, localityID string, qty int, basePrice decimal.Decimal) (*PurchaseResult, error)
	Transfer(ctx context.Context, in TransferInput) (*tickets.Ticket, error)
	Redeem(ctx context.Context, holder, ticketID string, index *int) (*tickets.Ticket, error)
	HoldingsOf(ctx context.Context, login string) ([]*tickets.Ticket, error)

	ListForResale(ctx context.Context, seller, ticketID string, price decimal.Decimal) (*resale.Listing, error)
	RemoveListing(ctx context.Context, listingID, caller string, isAdmin bool) (*resale.Listing, error)
	BuyResale(ctx context.Context, buyer, listingID string) (*ResaleResult, error)
	QueryActiveListings(ctx context.Context) ([]resale.Listing, error)
	MyListings(ctx context.Context, seller string) ([]resale.Listing, error)

	CreateCounteroffer(ctx context.Context, buyer, listingID string, price decimal.Decimal) (*counteroffers.Counteroffer, error)
	AcceptCounteroffer(ctx context.Context, seller, counterofferID string) (*AcceptResult, error)
	RejectCounteroffer(ctx context.Context, seller, counterofferID string) (*counteroffers.Counteroffer, error)
	ListCounteroffers(ctx context.Context, seller, listingID string) ([]counteroffers.Counteroffer, error)
	MyCounteroffers(ctx context.Context, buyer string) ([]counteroffers.Counteroffer, error)

	ComputeRefund(ctx context.Context, ticketID string, isEventCancellation bool) (*RefundQuote, error)
	RefundHardship(ctx context.Context, ticketID, holder string) (*purchases.Refund, error)
	RefundEventCancellation(ctx context.Context, eventID string) (*CancellationSummary, error)
}

// Dependencies wires the orchestrator to its collaborators. Reads are the
// non-transactional repositories used for lookups and pre-checks.
type Dependencies struct {
	Directory  Directory
	Catalog    Catalog
	Fees       FeeSource
	Transactor Transactor
	Locker     Locker
	Reads      Stores
	Publisher  notifications.Publisher
	Cache      cache.Service
}

type Options struct {
	MaxTicketsPerTransaction int
	LockWait                 time.Duration
	ListingCacheTTL          time.Duration
}

type service struct {
	directory Directory
	catalog   Catalog
	fees      FeeSource
	tx        Transactor
	locker    Locker
	reads     Stores
	publisher notifications.Publisher
	cache     cache.Service
	opts      Options
	now       func() time.Time
}

func NewService(deps Dependencies, opts Options) Service {
	if opts.MaxTicketsPerTransaction <= 0 {
		opts.MaxTicketsPerTransaction = 10
	}
	if opts.LockWait <= 0 {
		opts.LockWait = constants.TTL_LOCK_WAIT_DEFAULT
	}
	if opts.ListingCacheTTL <= 0 {
		opts.ListingCacheTTL = constants.TTL_LISTINGS_ACTIVE
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoop()
	}
	if deps.Publisher == nil {
		deps.Publisher = notifications.NewLogPublisher(nil)
	}
	return &service{
		directory: deps.Directory,
		catalog:   deps.Catalog,
		fees:      deps.Fees,
		tx:        deps.Transactor,
		locker:    deps.Locker,
		reads:     deps.Reads,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *service) HoldingsOf(ctx context.Context, login string) ([]*tickets.Ticket, error) {
	return s.reads.Tickets.ListByHolder(ctx, login)
}

func (s *service) MyListings(ctx context.Context, seller string) ([]resale.Listing, error) {
	return s.listingStore(s.reads.Listings).ListBySeller(ctx, seller)
}

// QueryActiveListings serves the resale board from cache. Every committed
// listing or ownership change drops the cached snapshot, and each read drops
// listings that went stale since the snapshot was taken, such as a show
// time passing.
func (s *service) QueryActiveListings(ctx context.Context) ([]resale.Listing, error) {
	store := s.listingStore(s.reads.Listings)
	var listings []resale.Listing
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_LISTINGS_ACTIVE, s.opts.ListingCacheTTL, func() (interface{}, error) {
		return store.QueryActive(ctx, s.reads.Tickets)
	}, &listings)
	if err != nil {
		return nil, err
	}
	return store.Resellable(ctx, s.reads.Tickets, listings)
}

func (s *service) ComputeRefund(ctx context.Context, ticketID string, isEventCancellation bool) (*RefundQuote, error) {
	t, err := s.reads.Tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	fixedFee := s.fees.Current().FixedFee
	amount, err := s.engine(nil).ComputeRefund(t, isEventCancellation, fixedFee)
	if err != nil {
		return nil, err
	}
	return &RefundQuote{
		TicketID:            t.ID,
		BasePrice:           t.BasePrice,
		FixedFee:            fixedFee,
		IsEventCancellation: isEventCancellation,
		Amount:              amount,
	}, nil
}

//  HELPERS

func (s *service) engine(wallets users.Repository) *pricing.Engine {
	if wallets == nil {
		return pricing.NewEngine(s.catalog, nil)
	}
	return pricing.NewEngine(s.catalog, walletLedger{wallets: wallets})
}

func (s *service) listingStore(repo resale.Repository) *resale.Store {
	return resale.NewStore(repo).WithClock(s.now)
}

// customer resolves login to an account that may hold tickets and money
func (s *service) customer(ctx context.Context, login string) (*users.Customer, error) {
	p, err := s.directory.Resolve(ctx, login)
	if err != nil {
		return nil, err
	}
	c, ok := p.(*users.Customer)
	if !ok {
		return nil, ErrNotCustomer
	}
	return c, nil
}

// ensureFunds is the pre-check; the debit inside the unit of work is the
// authoritative one
func (s *service) ensureFunds(ctx context.Context, login string, amount decimal.Decimal) error {
	balance, err := s.directory.GetBalance(ctx, login)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s needs %s", pricing.ErrInsufficientFunds, login, amount.StringFixed(2))
	}
	return nil
}

func (s *service) lock(ctx context.Context, keys []string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	defer cancel()
	return s.locker.Acquire(waitCtx, keys)
}

func (s *service) activeListing(ctx context.Context, ticketID string) (*resale.Listing, error) {
	l, err := s.reads.Listings.FindActiveByTicket(ctx, ticketID)
	if errors.Is(err, resale.ErrListingNotFound) {
		return nil, nil
	}
	return l, err
}

// lockTicket locks a ticket together with its active listing, if it has
// one. A listing appearing or closing while we waited is reported as a
// conflict rather than raced.
func (s *service) lockTicket(ctx context.Context, ticketID string) (func(), *resale.Listing, error) {
	before, err := s.activeListing(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	release, err := s.lock(ctx, LockKeys([]string{ticketID}, listingIDs(before), ""))
	if err != nil {
		return nil, nil, err
	}
	after, err := s.activeListing(ctx, ticketID)
	if err != nil {
		release()
		return nil, nil, err
	}
	if listingID(before) != listingID(after) {
		release()
		return nil, nil, ErrConcurrentUpdate
	}
	return release, after, nil
}

// lockListing locks a listing, and its ticket when the ticket may change
// hands, then re-reads the listing under the lock
func (s *service) lockListing(ctx context.Context, id string, withTicket bool) (func(), *resale.Listing, error) {
	l, err := s.reads.Listings.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var ticketIDs []string
	if withTicket {
		ticketIDs = []string{l.TicketID}
	}
	release, err := s.lock(ctx, LockKeys(ticketIDs, []string{l.ID}, ""))
	if err != nil {
		return nil, nil, err
	}
	l, err = s.reads.Listings.Get(ctx, id)
	if err != nil {
		release()
		return nil, nil, err
	}
	return release, l, nil
}

// closeListing deactivates l and rejects whatever was still being
// negotiated on it
func (s *service) closeListing(ctx context.Context, st Stores, l *resale.Listing, reason resale.DeactivationReason) ([]counteroffers.Counteroffer, error) {
	if err := s.listingStore(st.Listings).Deactivate(ctx, l, reason); err != nil {
		return nil, err
	}
	return counteroffers.NewWorkflow(st.Offers).RejectPending(ctx, l.ID)
}

func (s *service) newPurchase(kind purchases.Kind, buyer string) (*purchases.Purchase, error) {
	now := s.now()
	ref, err := purchases.NewReference(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchase reference: %w", err)
	}
	return &purchases.Purchase{
		ID:         newID(),
		Reference:  ref,
		Kind:       kind,
		BuyerLogin: buyer,
		Status:     purchases.StatusApproved,
		CreatedAt:  now,
	}, nil
}

func (s *service) invalidateListings(ctx context.Context) {
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_LISTINGS_ACTIVE); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate listings cache", err, nil)
	}
}

// invalidateEarnings drops cached earnings reports after sales or refunds
func (s *service) invalidateEarnings(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate earnings cache", err, nil)
	}
}

// publish is best effort: the operation has already committed
func (s *service) publish(ctx context.Context, event notifications.DomainEvent) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish domain event", err, map[string]interface{}{
			"type": string(event.Type),
		})
	}
}

func listingIDs(l *resale.Listing) []string {
	if l == nil {
		return nil
	}
	return []string{l.ID}
}

func listingID(l *resale.Listing) string {
	if l == nil {
		return ""
	}
	return l.ID
}

func buyersOf(offers []counteroffers.Counteroffer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.BuyerLogin)
	}
	return out
}
