package seed

import (
	"context"
	"fmt"
	"strings"

	"shopcart/internal/domain"
	productrepo "shopcart/internal/repository/product"
)

// Apply inserts catalog seed data for manual testing. Product ids are fixed
// so repeated runs update rather than duplicate.
func Apply(ctx context.Context, products productrepo.Repository) error {
	for _, p := range catalog {
		if err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}

var catalog = []domain.Product{
	{
		ID:          seedID("1"),
		Name:        "Demo T-Shirt",
		Description: "Soft cotton tee for demo purposes",
		PriceCents:  1999,
		Image:       "https://example.com/img/tshirt.jpg",
	},
	{
		ID:          seedID("2"),
		Name:        "Demo Mug",
		Description: "Ceramic mug with demo logo",
		PriceCents:  1299,
		Image:       "https://example.com/img/mug.jpg",
	},
	{
		ID:          seedID("3"),
		Name:        "Demo Sticker Pack",
		Description: "Ten assorted vinyl stickers",
		PriceCents:  499,
	},
	{
		ID:          seedID("4"),
		Name:        "Demo Hoodie",
		Description: "Heavyweight zip hoodie",
		PriceCents:  4999,
		Image:       "https://example.com/img/hoodie.jpg",
	},
}

// seedID pads a short suffix into the 24-hex product id space.
func seedID(suffix string) string {
	return strings.Repeat("0", 24-len(suffix)) + suffix
}
