package database

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateConstraints adds the invariants gorm tags cannot express
func MigrateConstraints(db *gorm.DB) error {
	statements := []struct {
		name string
		sql  string
	}{
		{
			// a listing is sold through at most one counteroffer
			name: "idx_counteroffer_accepted",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_counteroffer_accepted
				ON counteroffers (listing_id) WHERE status = 'ACCEPTED'`,
		},
		{
			name: "chk_locality_available_capacity",
			sql: `DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_locality_available_capacity') THEN
					ALTER TABLE localities ADD CONSTRAINT chk_locality_available_capacity CHECK (available <= capacity);
				END IF;
			END $$`,
		},
		{
			name: "chk_purchase_total",
			sql: `DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_total') THEN
					ALTER TABLE purchases ADD CONSTRAINT chk_purchase_total CHECK (total = subtotal + service_fee + issuance_fees);
				END IF;
			END $$`,
		},
		{
			name: "idx_purchases_event_kind_status",
			sql: `CREATE INDEX IF NOT EXISTS idx_purchases_event_kind_status
				ON purchases (event_id, kind, status)`,
		},
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt.name, err)
		}
	}
	return nil
}
