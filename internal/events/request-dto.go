package events

import "time"

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	VenueID     string    `json:"venue_id" validate:"required"`
	ShowTime    time.Time `json:"show_time" validate:"required"`
}

type CancelEventRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
