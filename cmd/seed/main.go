package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"boletamaster/internal/events"
	"boletamaster/internal/pricing"
	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/database"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"
	"boletamaster/pkg/cache"

	"github.com/shopspring/decimal"
)

const seedPassword = "qwerty"

type Seeder struct {
	db     *database.DB
	users  users.Service
	events events.Service
	venues venues.Service
	fees   *pricing.FeeSchedule
}

func main() {
	fmt.Println("🌱 Starting BoletaMaster Database Seeder...")

	cfg := config.Load()
	if cfg.Database.Backend != config.BackendPostgres {
		log.Fatalf("Seeding needs STORAGE_BACKEND=%s", config.BackendPostgres)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := NewSeeder(db, cfg)

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

func NewSeeder(db *database.DB, cfg *config.Config) *Seeder {
	var cacheService cache.Service = cache.NewNoop()
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}
	eventService := events.NewService(events.NewRepository(db.PostgreSQL))
	venueService := venues.NewService(venues.NewRepository(db.PostgreSQL), eventService, cacheService)
	eventService.SetVenueChecker(venueService)

	return &Seeder{
		db:     db,
		users:  users.NewService(users.NewRepository(db.PostgreSQL)),
		events: eventService,
		venues: venueService,
		fees: pricing.NewFeeSchedule(db.PostgreSQL, pricing.Fees{
			ServicePercent: cfg.Marketplace.DefaultServicePercent,
			FixedFee:       cfg.Marketplace.DefaultFixedFee,
		}),
	}
}

// CleanDatabase truncates every table, dependents first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"activity_records",
		"refund_requests",
		"counteroffers",
		"listings",
		"refunds",
		"purchases",
		"tickets",
		"offers",
		"localities",
		"events",
		"venues",
		"fee_schedules",
		"wallets",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds accounts, a venue, two approved events with localities and
// one offer, and the default fee settings
func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.SeedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	venue, err := s.venues.CreateVenue(ctx, "admin", venues.VenueInput{
		Name:     "Movistar Arena",
		Location: "Bogotá",
		Capacity: 14000,
	})
	if err != nil {
		return fmt.Errorf("failed to seed venue: %w", err)
	}
	fmt.Printf("    ✅ Created venue: %s\n", venue.Name)

	if err := s.SeedEvents(ctx, venue.ID); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	current := s.fees.Current()
	if err := s.fees.Update(ctx, current, "admin"); err != nil {
		return fmt.Errorf("failed to seed fees: %w", err)
	}
	fmt.Printf("  💲 Fees: %s%% service, %s issuance\n",
		current.ServicePercent.Mul(decimal.NewFromInt(100)).String(), current.FixedFee.StringFixed(2))

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates one admin, two organizers and three funded buyers, all
// with the same password
func (s *Seeder) SeedUsers(ctx context.Context) error {
	fmt.Println("  👤 Seeding users...")

	accounts := []users.RegisterInput{
		{Login: "admin", DisplayName: "Platform Admin", Role: users.RoleAdmin},
		{Login: "org-rock", DisplayName: "Rock Producciones", Role: users.RoleOrganizer, InitialBalance: decimal.NewFromInt(1000)},
		{Login: "org-teatro", DisplayName: "Teatro Colón", Role: users.RoleOrganizer},
		{Login: "ana", DisplayName: "Ana", Role: users.RoleBuyer, InitialBalance: decimal.NewFromInt(2000)},
		{Login: "bob", DisplayName: "Bob", Role: users.RoleBuyer, InitialBalance: decimal.NewFromInt(800)},
		{Login: "carla", DisplayName: "Carla", Role: users.RoleBuyer, InitialBalance: decimal.NewFromInt(300)},
	}
	for _, in := range accounts {
		in.Password = seedPassword
		u, err := s.users.Register(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", in.Login, err)
		}
		fmt.Printf("    ✅ Created user: %s (%s)\n", u.Login, u.Role)
	}
	return nil
}

func (s *Seeder) SeedEvents(ctx context.Context, venueID string) error {
	fmt.Println("  🎫 Seeding events...")

	seeds := []struct {
		organizer  string
		input      events.CreateEventInput
		localities []venues.LocalityInput
	}{
		{
			organizer: "org-rock",
			input: events.CreateEventInput{
				Name:        "Rock al Parque",
				Description: "Three stages, one night",
				VenueID:     venueID,
				ShowTime:    time.Now().AddDate(0, 2, 0).Truncate(time.Hour),
			},
			localities: []venues.LocalityInput{
				{Name: "General", Capacity: 5000, BasePrice: decimal.NewFromInt(120), BundleDiscount: decimal.RequireFromString("0.10")},
				{Name: "VIP", Numbered: true, Capacity: 300, BasePrice: decimal.NewFromInt(450)},
			},
		},
		{
			organizer: "org-teatro",
			input: events.CreateEventInput{
				Name:        "La Traviata",
				Description: "Opera in three acts",
				VenueID:     venueID,
				ShowTime:    time.Now().AddDate(0, 1, 0).Truncate(time.Hour),
			},
			localities: []venues.LocalityInput{
				{Name: "Platea", Numbered: true, Capacity: 400, BasePrice: decimal.NewFromInt(200)},
				{Name: "Balcón", Capacity: 600, BasePrice: decimal.NewFromInt(90)},
			},
		},
	}

	for i, seed := range seeds {
		event, err := s.events.CreateEvent(ctx, seed.organizer, seed.input)
		if err != nil {
			return fmt.Errorf("failed to create event %s: %w", seed.input.Name, err)
		}
		if _, err := s.events.ApproveEvent(ctx, event.ID); err != nil {
			return fmt.Errorf("failed to approve event %s: %w", event.Name, err)
		}
		fmt.Printf("    ✅ Created event: %s\n", event.Name)

		for _, in := range seed.localities {
			loc, err := s.venues.AddLocality(ctx, seed.organizer, event.ID, in)
			if err != nil {
				return fmt.Errorf("failed to add locality %s: %w", in.Name, err)
			}
			fmt.Printf("      • %s: %d seats at %s\n", loc.Name, loc.Capacity, in.BasePrice.StringFixed(2))

			// early-bird discount on the first event's general admission
			if i == 0 && !in.Numbered {
				_, err := s.venues.CreateOffer(ctx, seed.organizer, loc.ID, venues.OfferInput{
					Description: "Early bird",
					Discount:    decimal.RequireFromString("0.15"),
					StartsAt:    time.Now(),
					ExpiresAt:   time.Now().AddDate(0, 0, 14),
				})
				if err != nil {
					return fmt.Errorf("failed to create offer: %w", err)
				}
			}
		}
	}
	return nil
}
