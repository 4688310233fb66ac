package trading

import "errors"

// Error kinds surfaced by the trading core. Call sites wrap these with
// fmt.Errorf("...: %w", kind) so callers can classify failures with
// errors.Is while still seeing a specific message.
var (
	// ErrNotFound covers missing price data, selling a symbol with no
	// position, and unknown order or account ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument covers malformed requests: empty symbol,
	// non-positive quantity, unparseable or future dates.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFailedPrecondition covers requests that are well-formed but not
	// currently satisfiable: insufficient funds or insufficient shares.
	ErrFailedPrecondition = errors.New("failed precondition")

	// ErrInternal covers persistence failures.
	ErrInternal = errors.New("internal error")
)
