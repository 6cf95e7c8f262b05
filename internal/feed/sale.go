// Package feed provides the externally-supplied read-only data sources:
// the shop sale table and the jackpot announcement channel. The refresh
// job that rotates sales is a separate process; this package only reads
// what it publishes.
package feed

import "context"

// SaleTable resolves the current discount fraction for a shop item.
// Implementations return 0 for items not on sale. Discounts are clamped
// at the pricing layer, so a misbehaving feed can never exceed the cap.
type SaleTable interface {
	Discount(ctx context.Context, itemID string) (float64, error)
}

// StaticSaleTable is a fixed in-memory sale table, used in tests and as a
// fallback when no Redis feed is configured.
type StaticSaleTable map[string]float64

// Discount implements SaleTable.
func (s StaticSaleTable) Discount(_ context.Context, itemID string) (float64, error) {
	return s[itemID], nil
}
