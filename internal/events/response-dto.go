package events

import (
	"time"
)

type EventResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	VenueID        string    `json:"venue_id"`
	OrganizerLogin string    `json:"organizer_login"`
	ShowTime       time.Time `json:"show_time"`
	Status         Status    `json:"status"`
	CancelReason   string    `json:"cancel_reason,omitempty"`
}

func ToEventResponse(e *Event, now time.Time) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		VenueID:        e.VenueID,
		OrganizerLogin: e.OrganizerLogin,
		ShowTime:       e.ShowTime,
		Status:         e.StatusAt(now),
		CancelReason:   e.CancelReason,
	}
}

func ToEventResponses(list []Event, now time.Time) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for i := range list {
		out = append(out, ToEventResponse(&list[i], now))
	}
	return out
}
