package cart

import "github.com/shopspring/decimal"

// Key identifies a cart line: the same product stocked in two
// warehouses is two distinct lines.
type Key struct {
	ProductID  int64
	EntrepotID int64
}

// Item is one cart line. Quantity may be fractional (weight-based
// goods). Subtotal is always derived from Quantity and UnitPrice,
// never trusted from a stored value.
type Item struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductCode  string          `json:"productCode"`
	EntrepotID   int64           `json:"entrepotId"`
	EntrepotName string          `json:"entrepotNom"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ImagePath    *string         `json:"imagePath,omitempty"`
}

// Key returns the identity key for merge and lookup operations.
func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, EntrepotID: i.EntrepotID}
}

func (i Item) recomputed() Item {
	i.Subtotal = i.Quantity.Mul(i.UnitPrice)
	return i
}

// EntrepotIDs returns the distinct warehouses present in items, in
// first-seen order.
func EntrepotIDs(items []Item) []int64 {
	seen := map[int64]struct{}{}
	var ids []int64
	for _, item := range items {
		if _, ok := seen[item.EntrepotID]; ok {
			continue
		}
		seen[item.EntrepotID] = struct{}{}
		ids = append(ids, item.EntrepotID)
	}
	return ids
}
