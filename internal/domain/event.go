package domain

import "time"

// Stock event types published for downstream consumers.
const (
	EventStockDecremented = "stock.decremented"
	EventListingCorrected = "listing.corrected"
	EventPurchaseRecorded = "purchase.recorded"
)

// StockEvent describes one applied stock or cost change.
type StockEvent struct {
	Type      string    `json:"type"`
	SKU       string    `json:"sku,omitempty"`
	ListingID string    `json:"listing_id,omitempty"`
	Quantity  float64   `json:"quantity"`
	UnitCost  float64   `json:"unit_cost,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
