package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// FinanceAnalyzer computes per-line profitability for delivered orders in a
// date range. It returns the row set only; aggregation is the caller's concern.
type FinanceAnalyzer struct {
	creds  CredentialSource
	market Marketplace
	logger *slog.Logger
}

func NewFinanceAnalyzer(creds CredentialSource, market Marketplace, logger *slog.Logger) *FinanceAnalyzer {
	return &FinanceAnalyzer{
		creds:  creds,
		market: market,
		logger: logger.With("component", "finance"),
	}
}

// Analyze fetches orders created within [from, to], keeps only delivered ones
// and produces one FinancialRow per line item. Shipping cost is apportioned
// pro-rata by each line's share of the order total. An empty range yields an
// empty row set, not an error.
func (s *FinanceAnalyzer) Analyze(ctx context.Context, snapshot []domain.StockRecord, from, to time.Time) ([]domain.FinancialRow, error) {
	cred, err := s.creds.ValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain credential: %w", err)
	}

	sellerID, err := s.market.Me(ctx, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch seller: %w", err)
	}

	s.logger.Info("analyzing period", "from", from, "to", to)
	orders, err := s.market.SearchOrders(ctx, cred.AccessToken, sellerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	if len(orders) == 0 {
		s.logger.Info("no orders found in period")
		return []domain.FinancialRow{}, nil
	}

	costs := domain.IndexBySKU(snapshot)
	rows := []domain.FinancialRow{}

	for _, order := range orders {
		if !order.Delivered {
			continue
		}

		// search results omit shipping cost, fetch the full order
		detail, err := s.market.OrderDetail(ctx, cred.AccessToken, order.ID)
		if err != nil {
			s.logger.Warn("failed to fetch order detail, skipping", "order_id", order.ID, "error", err)
			continue
		}

		rows = append(rows, s.attributeOrder(detail, costs)...)
	}

	s.logger.Info("financial analysis completed", "orders", len(orders), "rows", len(rows))
	return rows, nil
}

// attributeOrder turns one delivered order into financial rows. A zero or
// absent order total makes every line's shipping share zero.
func (s *FinanceAnalyzer) attributeOrder(order *domain.Order, costs map[string]domain.StockRecord) []domain.FinancialRow {
	rows := make([]domain.FinancialRow, 0, len(order.Lines))

	for _, line := range order.Lines {
		saleValue := line.UnitPrice * float64(line.Quantity)

		proportion := 0.0
		if order.TotalAmount > 0 {
			proportion = saleValue / order.TotalAmount
		}
		shippingShare := order.ShippingCost * proportion

		unitCost := 0.0
		if rec, ok := costs[line.SKU]; ok {
			unitCost = rec.UnitCost
		}
		productCost := unitCost * float64(line.Quantity)

		rows = append(rows, domain.FinancialRow{
			Date:         order.ClosedAt,
			SKU:          line.SKU,
			Product:      line.Title,
			Quantity:     line.Quantity,
			SaleValue:    saleValue,
			Fee:          line.SaleFee,
			ShippingCost: shippingShare,
			ProductCost:  productCost,
			GrossProfit:  saleValue - line.SaleFee - shippingShare - productCost,
		})
	}

	return rows
}
