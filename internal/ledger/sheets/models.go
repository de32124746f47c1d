package sheets

// Ledger column headers. Rows are addressed by header name, never by position.
const (
	colSKU      = "SKU"
	colProduct  = "PRODUTO"
	colQuantity = "QUANTIDADE_LOCAL"
	colCost     = "PRECO_CUSTO"

	colListingPrefix     = "ID_ANUNCIO_"
	colFulfillmentPrefix = "LOGISTICA_"
)

type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

type batchUpdateRequest struct {
	ValueInputOption string           `json:"valueInputOption"`
	Data             []updateCellData `json:"data"`
}

type updateCellData struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

type updateRequest struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}
