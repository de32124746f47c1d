package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// PurchaseRecorder registers a stock purchase: it recomputes the SKU's
// weighted-average unit cost and persists the new quantity/cost pair.
type PurchaseRecorder struct {
	ledger    Ledger
	activity  ActivityLog
	publisher Publisher
	logger    *slog.Logger
}

func NewPurchaseRecorder(ledger Ledger, activity ActivityLog, publisher Publisher, logger *slog.Logger) *PurchaseRecorder {
	return &PurchaseRecorder{
		ledger:    ledger,
		activity:  activity,
		publisher: publisher,
		logger:    logger.With("component", "purchase"),
	}
}

// Record applies a purchase of quantity units at unitCost each to the SKU's
// ledger row. The quantity and cost land in the sheet as two sequential cell
// updates; if the second fails after the first succeeded the row stays
// half-updated and the error is reported.
func (s *PurchaseRecorder) Record(ctx context.Context, sku string, quantity, unitCost float64) (*domain.StockRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("purchase quantity must be positive, got %v", quantity)
	}
	if unitCost <= 0 {
		return nil, fmt.Errorf("purchase unit cost must be positive, got %v", unitCost)
	}

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	rec, ok := domain.IndexBySKU(snapshot)[sku]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, sku)
	}

	s.logger.Info("registering purchase",
		"sku", sku,
		"current_quantity", rec.LocalQuantity,
		"current_cost", rec.UnitCost,
		"purchased_quantity", quantity,
		"purchase_cost", unitCost,
	)

	newQty, newCost := domain.WeightedAverageCost(rec.LocalQuantity, rec.UnitCost, quantity, unitCost)

	if err := s.ledger.UpdateQuantityAndCost(ctx, sku, newQty, newCost); err != nil {
		recordActivity(ctx, s.activity, s.logger, domain.LevelError, "purchase",
			fmt.Sprintf("SKU %s: ledger update failed: %v", sku, err))
		return nil, fmt.Errorf("update ledger: %w", err)
	}

	recordActivity(ctx, s.activity, s.logger, domain.LevelInfo, "purchase",
		fmt.Sprintf("SKU %s: purchase recorded, quantity %v, average cost %v", sku, newQty, newCost))

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, domain.StockEvent{
			Type:     domain.EventPurchaseRecorded,
			SKU:      sku,
			Quantity: newQty,
			UnitCost: newCost,
		})
		if err != nil {
			s.logger.Warn("failed to publish purchase event", "sku", sku, "error", err)
		}
	}

	rec.LocalQuantity = newQty
	rec.UnitCost = newCost
	return &rec, nil
}
