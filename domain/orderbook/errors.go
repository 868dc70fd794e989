package orderbook

import "errors"

// All failures are returned as typed error values; the engine never
// panics on a bad order and never logs on its own.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidSymbol   = errors.New("invalid symbol")

	// Defensive kinds. Cancel cannot normally observe a Filled or
	// Cancelled order because terminal orders are dropped from the
	// index on the mutation that finished them.
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrOrderAlreadyFilled    = errors.New("order already filled")

	// Reserved kinds, never returned on normal paths.
	ErrInvalidSide           = errors.New("invalid side")
	ErrInvalidOrderType      = errors.New("invalid order type")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)
