package service

import (
	"context"
	"log/slog"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// recordActivity appends to the operator log stream. The log is optional and a
// failed append never disturbs the pipeline.
func recordActivity(ctx context.Context, log ActivityLog, logger *slog.Logger, level, component, message string) {
	if log == nil {
		return
	}
	err := log.Append(ctx, domain.ActivityEntry{
		Level:     level,
		Component: component,
		Message:   message,
	})
	if err != nil {
		logger.Debug("activity log append failed", "error", err)
	}
}
