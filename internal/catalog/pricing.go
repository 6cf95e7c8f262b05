package catalog

import "math"

// MaxDiscount is the sale-table contract: discounts are clamped to
// [0, MaxDiscount] no matter what the feed delivers.
const MaxDiscount = 0.25

// ClampDiscount normalizes a sale discount fraction into [0, MaxDiscount].
// NaN and infinities collapse to zero.
func ClampDiscount(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	if d < 0 {
		return 0
	}
	if d > MaxDiscount {
		return MaxDiscount
	}
	return d
}

// FinalPrice applies a clamped discount to a base price. The result is
// never below 1 coin.
func FinalPrice(basePrice int64, discount float64) int64 {
	if basePrice < 0 {
		basePrice = 0
	}
	d := ClampDiscount(discount)
	price := int64(math.Round(float64(basePrice) * (1 - d)))
	if price < 1 {
		return 1
	}
	return price
}
