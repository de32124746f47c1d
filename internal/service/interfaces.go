package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// CredentialSource yields a credential valid for at least the refresh window,
// or domain.ErrNeedsAuth when interactive re-authorization is required.
type CredentialSource interface {
	ValidCredential(ctx context.Context) (*domain.Credential, error)
}

// Ledger is the spreadsheet-backed stock record, keyed by SKU.
type Ledger interface {
	Snapshot(ctx context.Context) ([]domain.StockRecord, error)
	BatchUpdateQuantities(ctx context.Context, quantities map[string]float64) error
	UpdateQuantityAndCost(ctx context.Context, sku string, quantity, cost float64) error
}

// Marketplace is the outbound Mercado Livre API surface the pipeline consumes.
type Marketplace interface {
	Me(ctx context.Context, token string) (int64, error)
	SearchOrders(ctx context.Context, token string, sellerID int64, from, to time.Time) ([]domain.Order, error)
	OrderDetail(ctx context.Context, token string, orderID int64) (*domain.Order, error)
	ItemQuantity(ctx context.Context, token, listingID string) (int, error)
	UpdateItemQuantity(ctx context.Context, token, listingID string, quantity int) error
}

// WatermarkStore tracks the end of the last successfully processed order window.
type WatermarkStore interface {
	Last() (time.Time, error)
	Advance(t time.Time) error
}

// ActivityLog records operator-reviewable steps, warnings and errors.
type ActivityLog interface {
	Append(ctx context.Context, entry domain.ActivityEntry) error
}

// Publisher emits stock events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.StockEvent) error
	Close() error
}
