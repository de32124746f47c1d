package service

import (
	"context"
	"fmt"
	"log/slog"
)

// Pipeline runs the full sync cycle: order ingestion first, then listing
// reconciliation against a fresh ledger snapshot. The re-read makes the
// sequential dependency explicit: reconciliation only ever sees state the
// ingestion step already committed.
type Pipeline struct {
	ingestor   *Ingestor
	reconciler *Reconciler
	ledger     Ledger
	logger     *slog.Logger
}

func NewPipeline(ingestor *Ingestor, reconciler *Reconciler, ledger Ledger, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		ingestor:   ingestor,
		reconciler: reconciler,
		ledger:     ledger,
		logger:     logger.With("component", "pipeline"),
	}
}

func (p *Pipeline) RunCycle(ctx context.Context) error {
	if _, err := p.ingestor.Run(ctx); err != nil {
		return fmt.Errorf("ingest orders: %w", err)
	}

	snapshot, err := p.ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("re-read ledger: %w", err)
	}

	if _, err := p.reconciler.Run(ctx, snapshot); err != nil {
		return fmt.Errorf("reconcile listings: %w", err)
	}

	p.logger.Info("sync cycle completed")
	return nil
}
