package domain

import "time"

// Product is a catalog entry. Carts copy its name/price/image into line-item
// snapshots at add-time.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot converts the product into a cart line with the given quantity.
func (p Product) Snapshot(quantity int) LineItem {
	return LineItem{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Quantity:   quantity,
		Image:      p.Image,
	}
}
