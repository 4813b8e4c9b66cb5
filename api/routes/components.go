package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"boletamaster/internal/analytics"
	"boletamaster/internal/auth"
	"boletamaster/internal/counteroffers"
	"boletamaster/internal/events"
	"boletamaster/internal/marketplace"
	"boletamaster/internal/notifications"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/refunds"
	"boletamaster/internal/resale"
	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/database"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"
	"boletamaster/pkg/cache"
	"boletamaster/pkg/logger"
)

// components is the composed application graph behind the HTTP routes
type components struct {
	users       users.Service
	auth        auth.Service
	events      events.Service
	venues      venues.Service
	fees        *pricing.FeeSchedule
	purchases   purchases.Service
	marketplace marketplace.Service
	refunds     refunds.Service
	analytics   analytics.Service
	activity    notifications.ActivityService

	publisher notifications.Publisher
	consumer  *notifications.ActivityConsumer
}

// repositories groups one implementation of every store, either all gorm or
// all in memory
type repositories struct {
	users      users.Repository
	events     events.Repository
	venues     venues.Repository
	tickets    tickets.Repository
	listings   resale.Repository
	offers     counteroffers.Repository
	purchases  purchases.Repository
	refunds    refunds.Repository
	activity   notifications.Repository
	analytics  func(purchases.Repository, venues.Service) analytics.Repository
	transactor func(marketplace.Stores) marketplace.Transactor
}

func newRepositories(db *database.DB) repositories {
	if pg := db.PostgreSQL; pg != nil {
		return repositories{
			users:     users.NewRepository(pg),
			events:    events.NewRepository(pg),
			venues:    venues.NewRepository(pg),
			tickets:   tickets.NewRepository(pg),
			listings:  resale.NewRepository(pg),
			offers:    counteroffers.NewRepository(pg),
			purchases: purchases.NewRepository(pg),
			refunds:   refunds.NewRepository(pg),
			activity:  notifications.NewRepository(pg),
			analytics: func(purchases.Repository, venues.Service) analytics.Repository {
				return analytics.NewRepository(pg)
			},
			transactor: func(marketplace.Stores) marketplace.Transactor {
				return marketplace.NewGormTransactor(pg)
			},
		}
	}
	return repositories{
		users:     users.NewMemoryRepository(),
		events:    events.NewMemoryRepository(),
		venues:    venues.NewMemoryRepository(),
		tickets:   tickets.NewMemoryRepository(),
		listings:  resale.NewMemoryRepository(),
		offers:    counteroffers.NewMemoryRepository(),
		purchases: purchases.NewMemoryRepository(),
		refunds:   refunds.NewMemoryRepository(),
		activity:  notifications.NewMemoryRepository(),
		analytics: func(p purchases.Repository, v venues.Service) analytics.Repository {
			return analytics.NewSourceRepository(p, v)
		},
		transactor: func(stores marketplace.Stores) marketplace.Transactor {
			return marketplace.NewMemoryTransactor(stores)
		},
	}
}

func buildComponents(cfg *config.Config, db *database.DB) (*components, error) {
	appLogger := logger.GetDefault()
	repos := newRepositories(db)

	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	} else {
		cacheService = cache.NewNoop()
	}

	userService := users.NewService(repos.users)
	eventService := events.NewService(repos.events)
	venueService := venues.NewService(repos.venues, eventService, cacheService)
	eventService.SetVenueChecker(venueService)

	catalog := marketplace.NewCatalogAdapter(eventService, venueService)
	fees := pricing.NewFeeSchedule(db.PostgreSQL, pricing.Fees{
		ServicePercent: cfg.Marketplace.DefaultServicePercent,
		FixedFee:       cfg.Marketplace.DefaultFixedFee,
	})

	locker, err := newLocker(cfg, db)
	if err != nil {
		return nil, err
	}

	c := &components{
		users:     userService,
		auth:      auth.NewService(userService, cfg.JWT),
		events:    eventService,
		venues:    venueService,
		fees:      fees,
		purchases: purchases.NewService(repos.purchases),
		activity:  notifications.NewActivityService(repos.activity),
	}

	if cfg.Kafka.Enabled {
		pubConfig := notifications.DefaultKafkaPublisherConfig()
		pubConfig.Brokers = cfg.Kafka.Brokers
		pubConfig.Topic = cfg.Kafka.Topic
		publisher, err := notifications.NewKafkaPublisher(pubConfig)
		if err != nil {
			return nil, err
		}
		c.publisher = publisher

		consumerConfig := notifications.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Kafka.Brokers
		consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
		consumerConfig.Topics = []string{cfg.Kafka.Topic}
		consumer, err := notifications.NewActivityConsumer(consumerConfig, repos.activity)
		if err != nil {
			_ = publisher.Close()
			return nil, err
		}
		c.consumer = consumer
		appLogger.Info("Kafka domain events enabled",
			slog.String("topic", cfg.Kafka.Topic),
			slog.Any("brokers", cfg.Kafka.Brokers),
		)
	} else {
		// activity is recorded synchronously without a broker
		c.publisher = notifications.NewLogPublisher(repos.activity)
	}

	stores := marketplace.Stores{
		Tickets:   repos.tickets,
		Listings:  repos.listings,
		Offers:    repos.offers,
		Purchases: repos.purchases,
		Wallets:   repos.users,
		Inventory: catalog,
	}
	c.marketplace = marketplace.NewService(marketplace.Dependencies{
		Directory:  userService,
		Catalog:    catalog,
		Fees:       fees,
		Transactor: repos.transactor(stores),
		Locker:     locker,
		Reads:      stores,
		Publisher:  c.publisher,
		Cache:      cacheService,
	}, marketplace.Options{
		MaxTicketsPerTransaction: cfg.Marketplace.MaxTicketsPerTransaction,
		LockWait:                 cfg.Redis.LockWait,
		ListingCacheTTL:          cfg.Redis.ListingCacheTTL,
	})

	c.refunds = refunds.NewService(repos.refunds, repos.tickets, c.marketplace, eventService)
	c.analytics = analytics.NewService(repos.analytics(repos.purchases, venueService), eventService, cacheService)

	appLogger.Info("Application components ready",
		slog.String("storage", storageName(db)),
		slog.Bool("redis_cache", db.Redis != nil),
		slog.String("lock_backend", cfg.Marketplace.LockBackend),
	)
	return c, nil
}

func newLocker(cfg *config.Config, db *database.DB) (marketplace.Locker, error) {
	switch strings.ToLower(cfg.Marketplace.LockBackend) {
	case "", "memory":
		return marketplace.NewMemoryLocker(), nil
	case "redis":
		if db.Redis == nil {
			return nil, fmt.Errorf("LOCK_BACKEND=redis requires REDIS_ENABLED=true")
		}
		return marketplace.NewRedisLocker(db.Redis, cfg.Redis.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown LOCK_BACKEND %q", cfg.Marketplace.LockBackend)
	}
}

func storageName(db *database.DB) string {
	if db.PostgreSQL != nil {
		return config.BackendPostgres
	}
	return config.BackendMemory
}
