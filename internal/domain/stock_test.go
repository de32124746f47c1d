package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"dot separator", "12.5", 12.5},
		{"comma separator", "12,5", 12.5},
		{"integer", "7", 7},
		{"whitespace", "  3,25 ", 3.25},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"mixed garbage", "12,5kg", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecimal(tt.raw))
		})
	}
}

func TestWeightedAverageCost(t *testing.T) {
	tests := []struct {
		name     string
		oldQty   float64
		oldCost  float64
		qty      float64
		cost     float64
		wantQty  float64
		wantCost float64
	}{
		{"blend", 10, 5.00, 5, 8.00, 15, 6.00},
		{"first purchase", 0, 0, 4, 2.50, 4, 2.50},
		{"degenerate zero total", 0, 0, 0, 0, 0, 0},
		{"rounding", 3, 10, 1, 11, 4, 10.25},
		{"repeating decimal", 1, 1, 2, 2, 3, 1.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotQty, gotCost := WeightedAverageCost(tt.oldQty, tt.oldCost, tt.qty, tt.cost)
			assert.Equal(t, tt.wantQty, gotQty)
			assert.Equal(t, tt.wantCost, gotCost)
		})
	}
}

func TestListingSlotSelfManaged(t *testing.T) {
	assert.True(t, ListingSlot{ListingID: "MLB1", Fulfillment: "self_service"}.SelfManaged())
	assert.True(t, ListingSlot{ListingID: "MLB1", Fulfillment: "SELF_SERVICE"}.SelfManaged())
	assert.True(t, ListingSlot{ListingID: "MLB1"}.SelfManaged())
	assert.False(t, ListingSlot{ListingID: "MLB1", Fulfillment: "full"}.SelfManaged())
	assert.False(t, ListingSlot{ListingID: "MLB1", Fulfillment: "fulfillment"}.SelfManaged())
}

func TestIndexBySKU(t *testing.T) {
	records := []StockRecord{
		{SKU: "A", LocalQuantity: 1},
		{SKU: "B", LocalQuantity: 2},
	}

	idx := IndexBySKU(records)

	assert.Len(t, idx, 2)
	assert.Equal(t, 2.0, idx["B"].LocalQuantity)
}
