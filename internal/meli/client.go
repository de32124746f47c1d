// Package meli is the Mercado Livre REST client used by the sync pipeline.
// Every call is a single blocking request carrying a bearer token; there is no
// retry policy. Failures surface to the caller, which decides whether the
// failure is isolated or fatal.
package meli

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
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// queryTimeLayout is the millisecond-precision timestamp format the order
// search endpoint expects.
const queryTimeLayout = "2006-01-02T15:04:05.000Z"

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "meli"),
	}
}

// Me returns the authenticated seller's user id.
func (c *Client) Me(ctx context.Context, token string) (int64, error) {
	var user userResponse
	if err := c.get(ctx, token, "/users/me", &user); err != nil {
		return 0, fmt.Errorf("fetch user: %w", err)
	}
	return user.ID, nil
}

// SearchOrders returns orders created in [from, to] for the seller. A zero `to`
// leaves the window open-ended. Search results carry no shipping cost.
func (c *Client) SearchOrders(ctx context.Context, token string, sellerID int64, from, to time.Time) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("seller", strconv.FormatInt(sellerID, 10))
	q.Set("order.date_created.from", from.UTC().Format(queryTimeLayout))
	if !to.IsZero() {
		q.Set("order.date_created.to", to.UTC().Format(queryTimeLayout))
	}

	var resp orderSearchResponse
	if err := c.get(ctx, token, "/orders/search?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(resp.Results))
	for _, o := range resp.Results {
		orders = append(orders, c.transform(o))
	}
	return orders, nil
}

// OrderDetail fetches the full order, including shipping cost.
func (c *Client) OrderDetail(ctx context.Context, token string, orderID int64) (*domain.Order, error) {
	var o apiOrder
	if err := c.get(ctx, token, fmt.Sprintf("/orders/%d", orderID), &o); err != nil {
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	order := c.transform(o)
	return &order, nil
}

// ItemQuantity fetches the listing's reported available quantity, using a field
// projection so the response stays small.
func (c *Client) ItemQuantity(ctx context.Context, token, listingID string) (int, error) {
	var item itemQuantityResponse
	path := "/items/" + url.PathEscape(listingID) + "?attributes=available_quantity"
	if err := c.get(ctx, token, path, &item); err != nil {
		return 0, fmt.Errorf("fetch item %s: %w", listingID, err)
	}
	return item.AvailableQuantity, nil
}

// UpdateItemQuantity sets the listing's available quantity.
func (c *Client) UpdateItemQuantity(ctx context.Context, token, listingID string, quantity int) error {
	body, err := json.Marshal(itemQuantityUpdate{AvailableQuantity: quantity})
	if err != nil {
		return fmt.Errorf("marshal item update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/items/"+url.PathEscape(listingID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("update item %s: status %d: %s", listingID, resp.StatusCode, detail)
	}
	return nil
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) transform(o apiOrder) domain.Order {
	order := domain.Order{
		ID:          o.ID,
		TotalAmount: o.TotalAmount,
	}

	if t, err := time.Parse(time.RFC3339, o.DateCreated); err == nil {
		order.CreatedAt = t
	} else if o.DateCreated != "" {
		c.logger.Warn("failed to parse order date", "order_id", o.ID, "date", o.DateCreated)
	}
	if t, err := time.Parse(time.RFC3339, o.DateClosed); err == nil {
		order.ClosedAt = t
	}

	for _, tag := range o.Tags {
		if tag == "delivered" {
			order.Delivered = true
			break
		}
	}
	if o.Shipping != nil {
		order.ShippingCost = o.Shipping.Cost
	}

	for _, it := range o.OrderItems {
		order.Lines = append(order.Lines, domain.OrderLine{
			SKU:       it.Item.SellerSKU,
			Title:     it.Item.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			SaleFee:   it.SaleFee,
		})
	}
	return order
}
