package cart

import "github.com/akosarev/storefront/internal/models"

// Subtotal sums quantity*price over a cart snapshot. A line item whose
// product was deleted upstream, or whose quantity is missing, contributes
// zero instead of failing. An empty snapshot yields 0.
func Subtotal(items []models.LineItem) float64 {
	var total float64
	for _, li := range items {
		if li.Product == nil || li.Quantity <= 0 {
			continue
		}
		total += float64(li.Quantity) * li.Product.Price
	}
	return total
}
