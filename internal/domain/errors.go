package domain

import "errors"

var (
	// ErrNeedsAuth means no valid credential exists and refresh was rejected;
	// interactive re-authorization is required. Fatal to the current run.
	ErrNeedsAuth = errors.New("authorization required")

	// ErrNotFound means an operator referenced a SKU absent from the ledger.
	ErrNotFound = errors.New("sku not found in ledger")

	// ErrGateway means the ledger is unreachable or rejected a write. Aborts the
	// current operation and is reported upward.
	ErrGateway = errors.New("ledger gateway error")
)
