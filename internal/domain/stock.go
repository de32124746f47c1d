package domain

import (
	"strconv"
	"strings"
)

// MaxListingSlots is the number of (listing id, fulfillment) pairs a ledger row can hold.
const MaxListingSlots = 5

// SelfManagedFulfillment is the only fulfillment mode eligible for stock sync.
const SelfManagedFulfillment = "self_service"

// ListingSlot links a ledger row to one marketplace listing.
type ListingSlot struct {
	ListingID   string
	Fulfillment string
}

// Empty reports whether the slot has no listing assigned.
func (s ListingSlot) Empty() bool {
	return s.ListingID == ""
}

// SelfManaged reports whether the listing is fulfilled by the seller.
// Comparison is case-insensitive; an unset mode defaults to self-managed.
func (s ListingSlot) SelfManaged() bool {
	if s.Fulfillment == "" {
		return true
	}
	return strings.EqualFold(s.Fulfillment, SelfManagedFulfillment)
}

// StockRecord is one ledger row, keyed by SKU.
type StockRecord struct {
	SKU           string
	Product       string
	LocalQuantity float64
	UnitCost      float64
	Listings      []ListingSlot
}

// IndexBySKU builds a lookup map over a ledger snapshot.
func IndexBySKU(records []StockRecord) map[string]StockRecord {
	idx := make(map[string]StockRecord, len(records))
	for _, r := range records {
		idx[r.SKU] = r
	}
	return idx
}

// WeightedAverageCost blends existing and newly purchased stock value by
// quantity, rounding the resulting unit cost to two decimals. A zero combined
// quantity resets the cost to 0 instead of dividing by zero.
func WeightedAverageCost(oldQty, oldCost, purchasedQty, purchaseCost float64) (newQty, newCost float64) {
	newQty = oldQty + purchasedQty
	if newQty > 0 {
		newCost = RoundCurrency((oldQty*oldCost + purchasedQty*purchaseCost) / newQty)
	}
	return newQty, newCost
}

// ParseDecimal normalizes a textual cell value that may use a comma or a dot
// as decimal separator. Unparseable or empty input yields 0.
func ParseDecimal(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
