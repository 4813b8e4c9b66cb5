package database

import (
	"boletamaster/internal/counteroffers"
	"boletamaster/internal/events"
	"boletamaster/internal/notifications"
	"boletamaster/internal/pricing"
	"boletamaster/internal/purchases"
	"boletamaster/internal/refunds"
	"boletamaster/internal/resale"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"
	"boletamaster/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&users.Wallet{},
		&venues.Venue{},
		&events.Event{},
		&venues.Locality{},
		&venues.Offer{},
		&pricing.FeeRecord{},
		&tickets.Record{},
		&purchases.Purchase{},
		&purchases.Refund{},
		&resale.Listing{},
		&counteroffers.Counteroffer{},
		&refunds.RefundRequest{},
		&notifications.ActivityRecord{},
	)
}
