package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a completed marketplace operation
type EventType string

const (
	EventTicketsPurchased     EventType = "TICKETS_PURCHASED"
	EventTicketTransferred    EventType = "TICKET_TRANSFERRED"
	EventListingCreated       EventType = "LISTING_CREATED"
	EventListingRemoved       EventType = "LISTING_REMOVED"
	EventListingSold          EventType = "LISTING_SOLD"
	EventCounterofferCreated  EventType = "COUNTEROFFER_CREATED"
	EventCounterofferAccepted EventType = "COUNTEROFFER_ACCEPTED"
	EventCounterofferRejected EventType = "COUNTEROFFER_REJECTED"
	EventRefundIssued         EventType = "REFUND_ISSUED"
	EventTicketRedeemed       EventType = "TICKET_REDEEMED"
)

// DomainEvent is published after a marketplace operation commits
type DomainEvent struct {
	ID   uuid.UUID `json:"id"`
	Type EventType `json:"type"`

	// Actor performed the operation; Subjects are every login it concerns,
	// the actor included
	Actor    string   `json:"actor"`
	Subjects []string `json:"subjects"`

	EventID        string `json:"event_id,omitempty"`
	TicketID       string `json:"ticket_id,omitempty"`
	ListingID      string `json:"listing_id,omitempty"`
	CounterofferID string `json:"counteroffer_id,omitempty"`
	PurchaseID     string `json:"purchase_id,omitempty"`
	Amount         string `json:"amount,omitempty"`

	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent starts a domain event with the actor already among the subjects
func NewEvent(eventType EventType, actor string, others ...string) DomainEvent {
	subjects := []string{actor}
	for _, login := range others {
		if login == "" || contains(subjects, login) {
			continue
		}
		subjects = append(subjects, login)
	}
	return DomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Actor:      actor,
		Subjects:   subjects,
		OccurredAt: time.Now(),
	}
}

// PartitionKey keeps every event of one catalog event on one partition
func (e DomainEvent) PartitionKey() string {
	switch {
	case e.EventID != "":
		return e.EventID
	case e.TicketID != "":
		return e.TicketID
	default:
		return e.Actor
	}
}

func (e DomainEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (DomainEvent, error) {
	var e DomainEvent
	err := json.Unmarshal(data, &e)
	return e, err
}

// ActivityRecord is one user's view of a domain event
type ActivityRecord struct {
	ID             uint              `json:"-" gorm:"primaryKey"`
	DomainEventID  uuid.UUID         `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_activity_event_login"`
	Login          string            `json:"login" gorm:"size:100;not null;index;uniqueIndex:idx_activity_event_login"`
	Type           EventType         `json:"type" gorm:"size:40;not null"`
	Actor          string            `json:"actor" gorm:"size:100"`
	CatalogEventID string            `json:"catalog_event_id,omitempty" gorm:"size:64"`
	TicketID       string            `json:"ticket_id,omitempty" gorm:"size:120"`
	ListingID      string            `json:"listing_id,omitempty" gorm:"size:64"`
	CounterofferID string            `json:"counteroffer_id,omitempty" gorm:"size:64"`
	PurchaseID     string            `json:"purchase_id,omitempty" gorm:"size:64"`
	Amount         string            `json:"amount,omitempty" gorm:"size:32"`
	Details        map[string]string `json:"details,omitempty" gorm:"serializer:json"`
	OccurredAt     time.Time         `json:"occurred_at" gorm:"index"`
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}

// RecordsFor fans a domain event out into one record per subject
func RecordsFor(e DomainEvent) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(e.Subjects))
	for _, login := range e.Subjects {
		out = append(out, ActivityRecord{
			DomainEventID:  e.ID,
			Login:          login,
			Type:           e.Type,
			Actor:          e.Actor,
			CatalogEventID: e.EventID,
			TicketID:       e.TicketID,
			ListingID:      e.ListingID,
			CounterofferID: e.CounterofferID,
			PurchaseID:     e.PurchaseID,
			Amount:         e.Amount,
			Details:        e.Details,
			OccurredAt:     e.OccurredAt,
		})
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
