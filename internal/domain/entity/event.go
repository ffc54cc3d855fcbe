package entity

import "time"

type EventKind string

const (
	EventSessionStarted  EventKind = "session_started"
	EventItemStarted     EventKind = "item_started"
	EventRetry           EventKind = "retry"
	EventItemAbandoned   EventKind = "item_abandoned"
	EventItemCompleted   EventKind = "item_completed"
	EventPurchase        EventKind = "purchase"
	EventSale            EventKind = "sale"
	EventPaused          EventKind = "paused"
	EventResumed         EventKind = "resumed"
	EventHalted          EventKind = "halted"
	EventSessionFinished EventKind = "session_finished"
)

// Event is what the worker tells observers. Observers never write back.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Time      time.Time `json:"time"`
	Mode      Mode      `json:"mode"`
	Item      string    `json:"item,omitempty"`
	Message   string    `json:"message"`
	Quantity  int       `json:"quantity,omitempty"`
	UnitPrice int64     `json:"unit_price,omitempty"`
	Spent     int64     `json:"spent"`
	Income    int64     `json:"income"`
}
