package pricing

import (
	"context"
	"errors"
	"time"

	"paper-trading-go/internal/models"
)

// ErrNoPrice is returned when a symbol has no price point on or before the
// requested date.
var ErrNoPrice = errors.New("no price data")

// Oracle answers "what did this symbol close at, as of this date". The
// trading core treats it as an external collaborator.
type Oracle interface {
	// PriceAsOf returns the newest price point for symbol whose date is on
	// or before asOf, or ErrNoPrice if none exists.
	PriceAsOf(ctx context.Context, symbol string, asOf time.Time) (*models.PricePoint, error)
}
