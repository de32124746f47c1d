package domain

import "time"

// OrderLine is one line item of a marketplace order. SKU may be empty when the
// seller never mapped the listing; that is a reportable condition, not an error.
type OrderLine struct {
	SKU       string
	Title     string
	Quantity  int
	UnitPrice float64
	SaleFee   float64
}

// Order is a marketplace order as consumed by the pipeline. Search results carry
// no shipping cost; only a detail fetch fills it in.
type Order struct {
	ID           int64
	CreatedAt    time.Time
	ClosedAt     time.Time
	Delivered    bool
	TotalAmount  float64
	ShippingCost float64
	Lines        []OrderLine
}
