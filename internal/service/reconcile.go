package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// Reconciler pushes each ledger row's local quantity out to its marketplace
// listings. Only self-managed listings are touched; per-listing failures are
// isolated and never abort the pass.
type Reconciler struct {
	creds     CredentialSource
	market    Marketplace
	activity  ActivityLog
	publisher Publisher
	pacing    time.Duration
	logger    *slog.Logger
}

func NewReconciler(
	creds CredentialSource,
	market Marketplace,
	activity ActivityLog,
	publisher Publisher,
	pacing time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		creds:     creds,
		market:    market,
		activity:  activity,
		publisher: publisher,
		pacing:    pacing,
		logger:    logger.With("component", "reconcile"),
	}
}

// Run compares every listing's reported quantity against the given ledger
// snapshot and corrects mismatches. The snapshot is an explicit argument: the
// caller decides which state this pass reconciles against, typically a fresh
// re-read after ingestion committed its decrements.
func (s *Reconciler) Run(ctx context.Context, snapshot []domain.StockRecord) (*domain.ReconcileStats, error) {
	start := time.Now()

	cred, err := s.creds.ValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain credential: %w", err)
	}

	stats := &domain.ReconcileStats{}

	for _, rec := range snapshot {
		localQty := int(rec.LocalQuantity)
		s.logger.Info("reconciling sku", "sku", rec.SKU, "local_quantity", localQty)

		for _, slot := range rec.Listings {
			if slot.Empty() {
				continue
			}
			if !slot.SelfManaged() {
				stats.Skipped++
				s.logger.Info("listing not self-managed, skipping",
					"sku", rec.SKU,
					"listing_id", slot.ListingID,
					"fulfillment", slot.Fulfillment,
				)
				continue
			}

			s.reconcileListing(ctx, cred.AccessToken, rec.SKU, slot.ListingID, localQty, stats)

			// flat pacing between listing calls, not a backoff
			time.Sleep(s.pacing)
		}
	}

	stats.Duration = time.Since(start)
	s.logger.Info("reconciliation completed",
		"checked", stats.Checked,
		"updated", stats.Updated,
		"in_sync", stats.InSync,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (s *Reconciler) reconcileListing(ctx context.Context, token, sku, listingID string, localQty int, stats *domain.ReconcileStats) {
	stats.Checked++

	reported, err := s.market.ItemQuantity(ctx, token, listingID)
	if err != nil {
		stats.Errors++
		s.logger.Error("failed to fetch listing quantity", "listing_id", listingID, "error", err)
		recordActivity(ctx, s.activity, s.logger, domain.LevelError, "reconcile",
			fmt.Sprintf("listing %s: quantity fetch failed: %v", listingID, err))
		return
	}

	if reported == localQty {
		stats.InSync++
		s.logger.Info("listing already in sync", "listing_id", listingID, "quantity", reported)
		return
	}

	s.logger.Info("quantity mismatch, updating listing",
		"listing_id", listingID,
		"marketplace", reported,
		"local", localQty,
	)
	if err := s.market.UpdateItemQuantity(ctx, token, listingID, localQty); err != nil {
		stats.Errors++
		s.logger.Error("failed to update listing", "listing_id", listingID, "error", err)
		recordActivity(ctx, s.activity, s.logger, domain.LevelError, "reconcile",
			fmt.Sprintf("listing %s: quantity update failed: %v", listingID, err))
		return
	}

	stats.Updated++
	recordActivity(ctx, s.activity, s.logger, domain.LevelInfo, "reconcile",
		fmt.Sprintf("listing %s corrected from %d to %d", listingID, reported, localQty))

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, domain.StockEvent{
			Type:      domain.EventListingCorrected,
			SKU:       sku,
			ListingID: listingID,
			Quantity:  float64(localQty),
		})
		if err != nil {
			s.logger.Warn("failed to publish listing event", "listing_id", listingID, "error", err)
		}
	}
}
