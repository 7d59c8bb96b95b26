package event

import "time"

// SubjectOrderPlaced is published once per successful checkout.
const SubjectOrderPlaced = "order.placed"

// OrderPlaced is the wire payload for SubjectOrderPlaced.
type OrderPlaced struct {
	EventID    string    `json:"eventId"`
	OrderID    string    `json:"orderId"`
	OwnerKey   string    `json:"ownerKey"`
	TotalCents int64     `json:"totalCents"`
	ItemCount  int       `json:"itemCount"`
	PlacedAt   time.Time `json:"placedAt"`
}
