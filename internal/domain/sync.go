package domain

import "time"

// IngestStats holds statistics about one order-ingestion run.
type IngestStats struct {
	OrdersFound   int
	LinesApplied  int
	SKUsChanged   int
	MissingSKU    int
	UnknownSKU    int
	WatermarkFrom time.Time
	WatermarkTo   time.Time
	Duration      time.Duration
}

// ReconcileStats holds statistics about one listing-reconciliation run.
type ReconcileStats struct {
	Checked  int
	Updated  int
	InSync   int
	Skipped  int
	Errors   int
	Duration time.Duration
}
