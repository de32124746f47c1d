package domain

import (
	"math"
	"time"
)

// FinancialRow is one delivered order line with its share of order costs attributed.
type FinancialRow struct {
	Date         time.Time
	SKU          string
	Product      string
	Quantity     int
	SaleValue    float64
	Fee          float64
	ShippingCost float64
	ProductCost  float64
	GrossProfit  float64
}

// FinancialSummary aggregates a row set for display.
type FinancialSummary struct {
	Revenue     float64
	Fees        float64
	Shipping    float64
	ProductCost float64
	GrossProfit float64
	MarginPct   float64
}

// Summarize totals a row set. Margin is zero when there is no revenue.
func Summarize(rows []FinancialRow) FinancialSummary {
	var s FinancialSummary
	for _, r := range rows {
		s.Revenue += r.SaleValue
		s.Fees += r.Fee
		s.Shipping += r.ShippingCost
		s.ProductCost += r.ProductCost
		s.GrossProfit += r.GrossProfit
	}
	if s.Revenue > 0 {
		s.MarginPct = s.GrossProfit / s.Revenue * 100
	}
	return s
}

// RoundCurrency rounds to two decimal places, half away from zero.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
