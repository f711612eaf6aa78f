package models

import "time"

// Event types
const (
	EventTypeOrderPlaced           = "ORDER_PLACED"
	EventTypeOrderSubmissionFailed = "ORDER_SUBMISSION_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published when the marketplace accepts an order.
type OrderPlacedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	OrderCode string `json:"order_code"`
	Total     int64  `json:"total"`
	ItemCount int    `json:"item_count"`
	PromoCode string `json:"promo_code,omitempty"`
}

// OrderSubmissionFailedEvent is published when the marketplace rejects a
// submission. Validation failures stay local and are not published.
type OrderSubmissionFailedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}
