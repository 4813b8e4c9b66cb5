package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// FeeSchedule serves the current fees and persists admin updates.
// A nil db keeps the schedule in process only.
type FeeSchedule struct {
	mu   sync.RWMutex
	fees Fees
	db   *gorm.DB
}

const feeRecordID = 1

func NewFeeSchedule(db *gorm.DB, defaults Fees) *FeeSchedule {
	return &FeeSchedule{db: db, fees: defaults}
}

// Load replaces the defaults with the persisted schedule, if any
func (s *FeeSchedule) Load(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	var rec FeeRecord
	err := s.db.WithContext(ctx).First(&rec, feeRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load fee schedule: %w", err)
	}
	s.mu.Lock()
	s.fees = Fees{ServicePercent: rec.ServicePercent, FixedFee: rec.FixedFee}
	s.mu.Unlock()
	return nil
}

func (s *FeeSchedule) Current() Fees {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fees
}

func (s *FeeSchedule) Update(ctx context.Context, fees Fees, adminLogin string) error {
	if err := fees.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		rec := FeeRecord{
			ID:             feeRecordID,
			ServicePercent: fees.ServicePercent,
			FixedFee:       fees.FixedFee,
			UpdatedBy:      adminLogin,
		}
		if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save fee schedule: %w", err)
		}
	}
	s.fees = fees
	return nil
}
