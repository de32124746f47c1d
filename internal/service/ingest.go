package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

const (
	// defaultLookback is how far back the first ever run reaches for orders.
	defaultLookback = 24 * time.Hour

	// recentOrderWindow separates operationally urgent missing-SKU warnings
	// from historical noise.
	recentOrderWindow = 48 * time.Hour
)

// Ingestor fetches new marketplace orders since the watermark and applies the
// resulting stock decrements to the ledger in one batched write.
type Ingestor struct {
	creds      CredentialSource
	ledger     Ledger
	market     Marketplace
	watermarks WatermarkStore
	activity   ActivityLog
	publisher  Publisher
	logger     *slog.Logger
}

func NewIngestor(
	creds CredentialSource,
	ledger Ledger,
	market Marketplace,
	watermarks WatermarkStore,
	activity ActivityLog,
	publisher Publisher,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		creds:      creds,
		ledger:     ledger,
		market:     market,
		watermarks: watermarks,
		activity:   activity,
		publisher:  publisher,
		logger:     logger.With("component", "ingest"),
	}
}

// Run executes one ingestion pass: fetch orders created since the watermark,
// accumulate per-SKU decrements in memory, write them back as a single batch,
// then advance the watermark. Any failure before the batch write leaves the
// watermark untouched, so the next run re-reads the same window.
func (s *Ingestor) Run(ctx context.Context) (*domain.IngestStats, error) {
	start := time.Now()

	cred, err := s.creds.ValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain credential: %w", err)
	}

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	from, err := s.watermarks.Last()
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	if from.IsZero() {
		from = start.Add(-defaultLookback)
	}

	stats := &domain.IngestStats{
		WatermarkFrom: from,
		WatermarkTo:   start,
	}

	s.logger.Info("fetching orders", "since", from)
	sellerID, err := s.market.Me(ctx, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch seller: %w", err)
	}

	orders, err := s.market.SearchOrders(ctx, cred.AccessToken, sellerID, from, time.Time{})
	if err != nil {
		recordActivity(ctx, s.activity, s.logger, domain.LevelError, "ingest",
			fmt.Sprintf("order fetch failed: %v", err))
		return nil, fmt.Errorf("search orders: %w", err)
	}
	stats.OrdersFound = len(orders)

	if len(orders) == 0 {
		s.logger.Info("no new orders found")
		if err := s.watermarks.Advance(start); err != nil {
			return stats, fmt.Errorf("advance watermark: %w", err)
		}
		stats.Duration = time.Since(start)
		return stats, nil
	}

	s.logger.Info("processing orders", "count", len(orders))
	changes := s.accumulateDecrements(ctx, orders, domain.IndexBySKU(snapshot), stats)

	if len(changes) > 0 {
		if err := s.ledger.BatchUpdateQuantities(ctx, changes); err != nil {
			recordActivity(ctx, s.activity, s.logger, domain.LevelError, "ingest",
				fmt.Sprintf("batch stock update failed: %v", err))
			return stats, fmt.Errorf("apply decrements: %w", err)
		}
		stats.SKUsChanged = len(changes)
		recordActivity(ctx, s.activity, s.logger, domain.LevelInfo, "ingest",
			fmt.Sprintf("applied stock decrements for %d SKU(s)", len(changes)))
		s.publishDecrements(ctx, changes)
	}

	if err := s.watermarks.Advance(start); err != nil {
		return stats, fmt.Errorf("advance watermark: %w", err)
	}

	stats.Duration = time.Since(start)
	s.logger.Info("ingestion completed",
		"orders", stats.OrdersFound,
		"lines_applied", stats.LinesApplied,
		"skus_changed", stats.SKUsChanged,
		"missing_sku", stats.MissingSKU,
		"unknown_sku", stats.UnknownSKU,
		"duration", stats.Duration,
	)
	return stats, nil
}

// accumulateDecrements chains per-SKU running totals across all orders of the
// run. The ledger is read once; each SKU's total starts at its last known
// quantity and every matching line subtracts from that in-memory figure.
func (s *Ingestor) accumulateDecrements(
	ctx context.Context,
	orders []domain.Order,
	known map[string]domain.StockRecord,
	stats *domain.IngestStats,
) map[string]float64 {
	changes := make(map[string]float64)

	for _, order := range orders {
		s.logger.Info("processing order", "order_id", order.ID)
		for _, line := range order.Lines {
			if line.SKU == "" {
				stats.MissingSKU++
				s.flagMissingSKU(ctx, order, line)
				continue
			}

			rec, ok := known[line.SKU]
			if !ok {
				stats.UnknownSKU++
				s.logger.Warn("sold sku not present in ledger", "sku", line.SKU)
				recordActivity(ctx, s.activity, s.logger, domain.LevelWarning, "ingest",
					fmt.Sprintf("SKU %q sold but not found in the stock ledger", line.SKU))
				continue
			}

			if _, seen := changes[line.SKU]; !seen {
				changes[line.SKU] = rec.LocalQuantity
			}
			changes[line.SKU] -= float64(line.Quantity)
			stats.LinesApplied++
			s.logger.Info("stock decremented",
				"sku", line.SKU,
				"quantity", line.Quantity,
				"remaining", changes[line.SKU],
			)
		}
	}

	return changes
}

// flagMissingSKU reports a line that cannot be decremented for lack of a SKU.
// Recent orders are escalated: an unmapped listing that is still selling needs
// operator attention now, old ones are historical noise.
func (s *Ingestor) flagMissingSKU(ctx context.Context, order domain.Order, line domain.OrderLine) {
	if time.Since(order.CreatedAt) < recentOrderWindow {
		s.logger.Error("recent order line has no sku",
			"order_id", order.ID,
			"title", line.Title,
		)
		recordActivity(ctx, s.activity, s.logger, domain.LevelError, "ingest",
			fmt.Sprintf("recent order %d: item %q has no SKU, stock cannot be decremented", order.ID, line.Title))
		return
	}

	s.logger.Warn("order line has no sku",
		"order_id", order.ID,
		"title", line.Title,
	)
	recordActivity(ctx, s.activity, s.logger, domain.LevelWarning, "ingest",
		fmt.Sprintf("order %d: item %q has no SKU", order.ID, line.Title))
}

func (s *Ingestor) publishDecrements(ctx context.Context, changes map[string]float64) {
	if s.publisher == nil {
		return
	}
	for sku, qty := range changes {
		err := s.publisher.Publish(ctx, domain.StockEvent{
			Type:     domain.EventStockDecremented,
			SKU:      sku,
			Quantity: qty,
		})
		if err != nil {
			s.logger.Warn("failed to publish stock event", "sku", sku, "error", err)
		}
	}
}
