package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	rows := []FinancialRow{
		{SaleValue: 60, Fee: 6, ShippingCost: 6, ProductCost: 10, GrossProfit: 38},
		{SaleValue: 40, Fee: 8, ShippingCost: 4, ProductCost: 0, GrossProfit: 28},
	}

	sum := Summarize(rows)

	assert.InDelta(t, 100.0, sum.Revenue, 1e-9)
	assert.InDelta(t, 14.0, sum.Fees, 1e-9)
	assert.InDelta(t, 10.0, sum.Shipping, 1e-9)
	assert.InDelta(t, 10.0, sum.ProductCost, 1e-9)
	assert.InDelta(t, 66.0, sum.GrossProfit, 1e-9)
	assert.InDelta(t, 66.0, sum.MarginPct, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)

	assert.Zero(t, sum.Revenue)
	assert.Zero(t, sum.MarginPct)
}
