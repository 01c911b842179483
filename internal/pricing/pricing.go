// Package pricing derives display prices from the stored price and discount.
package pricing

import "math"

// OriginalPrice computes the pre-discount price shown next to a discounted
// one: round(price / (1 - discount/100)). It is never stored, only derived.
// ok is false when there is no discount to display (d <= 0 or d >= 100).
func OriginalPrice(price, discountPercent float64) (float64, bool) {
	if discountPercent <= 0 || discountPercent >= 100 {
		return 0, false
	}
	return math.Round(price / (1 - discountPercent/100)), true
}
