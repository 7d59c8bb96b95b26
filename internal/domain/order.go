package domain

import "time"

// Order is the immutable result of a checkout: the cart's line items copied
// 1:1 at conversion time.
type Order struct {
	ID         string     `json:"id"`
	OwnerKey   string     `json:"ownerKey"`
	Items      []LineItem `json:"items"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
}
