package events

import (
	"time"
)

type Event struct {
	ID             string    `json:"id" gorm:"primaryKey;size:64"`
	Name           string    `json:"name" gorm:"not null;size:255"`
	Description    string    `json:"description" gorm:"type:text"`
	VenueID        string    `json:"venue_id" gorm:"size:64;not null;index"`
	OrganizerLogin string    `json:"organizer_login" gorm:"size:100;not null;index"`
	ShowTime       time.Time `json:"show_time" gorm:"not null;index"`
	Approved       bool      `json:"approved" gorm:"not null;default:false"`
	Rejected       bool      `json:"rejected" gorm:"not null;default:false"`
	Cancelled      bool      `json:"cancelled" gorm:"not null;default:false"`
	CancelReason   string    `json:"cancel_reason,omitempty" gorm:"size:500"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsActiveAt reports whether tickets may be sold: approved, not cancelled, not yet shown
func (e *Event) IsActiveAt(now time.Time) bool {
	return e.Approved && !e.Cancelled && e.ShowTime.After(now)
}

func (e *Event) StatusAt(now time.Time) Status {
	switch {
	case e.Cancelled:
		return StatusCancelled
	case e.Rejected:
		return StatusRejected
	case !e.Approved:
		return StatusPendingApproval
	case !e.ShowTime.After(now):
		return StatusFinished
	default:
		return StatusApproved
	}
}

type ListQuery struct {
	OrganizerLogin string
	OnlyActive     bool
	Status         Status
}
