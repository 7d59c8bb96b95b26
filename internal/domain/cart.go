package domain

import "time"

// Cart is the mutable line-item collection for one owner key. Exactly one
// cart exists per owner key; TotalCents must always equal the sum of its
// line totals.
type Cart struct {
	OwnerKey   string     `json:"ownerKey"`
	Items      []LineItem `json:"items"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// LineItem is one product entry within a cart. Name, PriceCents and Image are
// snapshots taken at add-time and are not re-validated against the catalog.
type LineItem struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image,omitempty"`
}

// TotalCents is the line's contribution to the cart total.
func (l LineItem) TotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// EmptyCart returns a cart with no items for the given owner.
func EmptyCart(ownerKey string) Cart {
	return Cart{OwnerKey: ownerKey, Items: []LineItem{}}
}

// Find returns the index of the line holding productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Recompute derives TotalCents from the line items. Every mutation path must
// call it before the cart is persisted or handed out.
func (c *Cart) Recompute() {
	var total int64
	for i := range c.Items {
		total += c.Items[i].TotalCents()
	}
	c.TotalCents = total
}

// Count is the sum of quantities across all lines.
func (c *Cart) Count() int {
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// Add merges a line into the cart: quantities accumulate on an existing
// product, otherwise the line is appended. The total is recomputed.
func (c *Cart) Add(line LineItem) {
	if i := c.Find(line.ProductID); i >= 0 {
		c.Items[i].Quantity += line.Quantity
	} else {
		c.Items = append(c.Items, line)
	}
	c.Recompute()
}

// Remove deletes the line holding productID. It reports whether the line
// existed; the cart is unchanged when it did not.
func (c *Cart) Remove(productID string) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recompute()
	return true
}

// SetQuantity sets the quantity of the line holding productID. Quantities at
// or below zero remove the line instead of persisting them. It reports
// whether the line existed.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	c.Recompute()
	return true
}

// Clear empties the cart in place.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.TotalCents = 0
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() Cart {
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}
