package services

import (
	"strings"

	"github.com/platoo/order-service/models"
	"github.com/shopspring/decimal"
)

// CanonicalMenuItemID is the form identifiers are compared in.
func CanonicalMenuItemID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// CalculateTotal prices the requested lines against the resolved catalog
// entries, keyed by canonical id. Lines without an entry are dropped from both
// the items and the total; entries nobody asked for are ignored. Each catalog
// price is rounded to cents once and that value is both the stored snapshot and
// the amount summed, so the total always equals the sum of its lines. A zero
// total means nothing chargeable was ordered and is reported as
// ErrNoResolvableItems.
func CalculateTotal(requested []models.LineItemRequest, resolved map[string]models.CatalogEntry) (decimal.Decimal, []models.OrderItem, error) {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(requested))

	for _, line := range requested {
		entry, ok := resolved[CanonicalMenuItemID(line.MenuItemID)]
		if !ok || line.Quantity <= 0 {
			continue
		}

		price := entry.Price.Round(2)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderItem{
			MenuItemID: strings.TrimSpace(line.MenuItemID),
			Quantity:   line.Quantity,
			Price:      price.InexactFloat64(),
		})
	}

	if total.IsZero() {
		return decimal.Zero, nil, ErrNoResolvableItems
	}
	return total, items, nil
}
