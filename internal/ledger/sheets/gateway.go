// Package sheets implements the stock-ledger gateway over the Google Sheets
// values REST API. Cells are read as raw text and normalized here; no textual
// value crosses this boundary.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/config"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

type Gateway struct {
	baseURL       string
	spreadsheetID string
	sheetName     string
	accessToken   string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewGateway(cfg config.SheetsConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		baseURL:       cfg.BaseURL,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		accessToken:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With("component", "ledger"),
	}
}

// Snapshot reads the whole ledger and returns one normalized record per row.
// Rows without a SKU are skipped.
func (g *Gateway) Snapshot(ctx context.Context) ([]domain.StockRecord, error) {
	grid, err := g.fetchGrid(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.StockRecord, 0, len(grid.rows))
	for _, row := range grid.rows {
		sku := grid.cell(row, colSKU)
		if sku == "" {
			continue
		}

		rec := domain.StockRecord{
			SKU:           sku,
			Product:       grid.cell(row, colProduct),
			LocalQuantity: domain.ParseDecimal(grid.cell(row, colQuantity)),
			UnitCost:      domain.ParseDecimal(grid.cell(row, colCost)),
		}
		for i := 1; i <= domain.MaxListingSlots; i++ {
			rec.Listings = append(rec.Listings, domain.ListingSlot{
				ListingID:   grid.cell(row, colListingPrefix+strconv.Itoa(i)),
				Fulfillment: grid.cell(row, colFulfillmentPrefix+strconv.Itoa(i)),
			})
		}
		records = append(records, rec)
	}

	g.logger.Debug("ledger snapshot read", "rows", len(records))
	return records, nil
}

// BatchUpdateQuantities writes all accumulated quantity changes in a single
// batched call. SKUs no longer present in the sheet are logged and dropped from
// the batch; there is no rollback if the batch partially applies.
func (g *Gateway) BatchUpdateQuantities(ctx context.Context, quantities map[string]float64) error {
	if len(quantities) == 0 {
		return nil
	}

	grid, err := g.fetchGrid(ctx)
	if err != nil {
		return err
	}
	qtyCol, ok := grid.column(colQuantity)
	if !ok {
		return fmt.Errorf("%w: column %s not found", domain.ErrGateway, colQuantity)
	}

	var data []updateCellData
	for sku, qty := range quantities {
		rowNum, ok := grid.rowOf(sku)
		if !ok {
			g.logger.Warn("sku missing from sheet during batch update", "sku", sku)
			continue
		}
		data = append(data, updateCellData{
			Range:  g.cellRange(qtyCol, rowNum),
			Values: [][]any{{qty}},
		})
	}
	if len(data) == 0 {
		return nil
	}

	body, err := json.Marshal(batchUpdateRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	})
	if err != nil {
		return fmt.Errorf("marshal batch update: %w", err)
	}

	path := fmt.Sprintf("/spreadsheets/%s/values:batchUpdate", g.spreadsheetID)
	if err := g.do(ctx, http.MethodPost, path, body); err != nil {
		return fmt.Errorf("%w: batch update: %v", domain.ErrGateway, err)
	}

	g.logger.Info("ledger batch update applied", "cells", len(data))
	return nil
}

// UpdateQuantityAndCost writes a row's quantity and unit cost as two sequential
// cell updates. If the second write fails after the first succeeded, the row is
// left half-updated; callers get the error but no compensation is attempted.
func (g *Gateway) UpdateQuantityAndCost(ctx context.Context, sku string, quantity, cost float64) error {
	grid, err := g.fetchGrid(ctx)
	if err != nil {
		return err
	}

	rowNum, ok := grid.rowOf(sku)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, sku)
	}
	qtyCol, ok := grid.column(colQuantity)
	if !ok {
		return fmt.Errorf("%w: column %s not found", domain.ErrGateway, colQuantity)
	}
	costCol, ok := grid.column(colCost)
	if !ok {
		return fmt.Errorf("%w: column %s not found", domain.ErrGateway, colCost)
	}

	if err := g.updateCell(ctx, qtyCol, rowNum, quantity); err != nil {
		return fmt.Errorf("%w: update quantity for %s: %v", domain.ErrGateway, sku, err)
	}
	if err := g.updateCell(ctx, costCol, rowNum, cost); err != nil {
		return fmt.Errorf("%w: update cost for %s: %v", domain.ErrGateway, sku, err)
	}

	g.logger.Info("ledger row updated", "sku", sku, "quantity", quantity, "cost", cost)
	return nil
}

// grid is one raw read of the sheet: header positions plus data rows.
type grid struct {
	columns map[string]int
	rows    [][]string
	skuRows map[string]int
}

func (gr *grid) column(header string) (int, bool) {
	i, ok := gr.columns[header]
	return i, ok
}

func (gr *grid) cell(row []string, header string) string {
	i, ok := gr.columns[header]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// rowOf returns the 1-based sheet row number for a SKU.
func (gr *grid) rowOf(sku string) (int, bool) {
	n, ok := gr.skuRows[sku]
	return n, ok
}

func (g *Gateway) fetchGrid(ctx context.Context) (*grid, error) {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s", g.spreadsheetID, url.PathEscape(g.sheetName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: read sheet: status %d: %s", domain.ErrGateway, resp.StatusCode, detail)
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("%w: decode sheet values: %v", domain.ErrGateway, err)
	}
	if len(vr.Values) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", domain.ErrGateway)
	}

	gr := &grid{
		columns: make(map[string]int),
		rows:    vr.Values[1:],
		skuRows: make(map[string]int),
	}
	for i, header := range vr.Values[0] {
		gr.columns[header] = i
	}
	if skuCol, ok := gr.columns[colSKU]; ok {
		for i, row := range gr.rows {
			if skuCol < len(row) && row[skuCol] != "" {
				// header is row 1, first data row is row 2
				gr.skuRows[row[skuCol]] = i + 2
			}
		}
	}
	return gr, nil
}

func (g *Gateway) updateCell(ctx context.Context, col, rowNum int, value float64) error {
	cell := g.cellRange(col, rowNum)
	body, err := json.Marshal(updateRequest{
		Range:  cell,
		Values: [][]any{{value}},
	})
	if err != nil {
		return fmt.Errorf("marshal cell update: %w", err)
	}

	path := fmt.Sprintf("/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		g.spreadsheetID, url.PathEscape(cell))
	return g.do(ctx, http.MethodPut, path, body)
}

func (g *Gateway) do(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// cellRange builds an A1 reference like "Estoque!C5".
func (g *Gateway) cellRange(col, rowNum int) string {
	return fmt.Sprintf("%s!%s%d", g.sheetName, columnLetter(col), rowNum)
}

func columnLetter(i int) string {
	letters := ""
	for i >= 0 {
		letters = string(rune('A'+i%26)) + letters
		i = i/26 - 1
	}
	return letters
}
