package meli

// API payload shapes for the order and item endpoints.

type userResponse struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

type orderSearchResponse struct {
	Results []apiOrder `json:"results"`
}

type apiOrder struct {
	ID          int64          `json:"id"`
	DateCreated string         `json:"date_created"`
	DateClosed  string         `json:"date_closed"`
	Tags        []string       `json:"tags"`
	TotalAmount float64        `json:"total_amount"`
	Shipping    *apiShipping   `json:"shipping"`
	OrderItems  []apiOrderItem `json:"order_items"`
}

type apiShipping struct {
	Cost float64 `json:"cost"`
}

type apiOrderItem struct {
	Item      apiItemRef `json:"item"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unit_price"`
	SaleFee   float64    `json:"sale_fee"`
}

type apiItemRef struct {
	Title     string `json:"title"`
	SellerSKU string `json:"seller_sku"`
}

type itemQuantityResponse struct {
	AvailableQuantity int `json:"available_quantity"`
}

type itemQuantityUpdate struct {
	AvailableQuantity int `json:"available_quantity"`
}
