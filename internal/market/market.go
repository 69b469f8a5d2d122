// Package market defines the external market-data collaborator
// interfaces consumed by the selection engine. Retrieval, caching and
// rate limiting all live behind these interfaces; the engine applies
// no retry policy of its own.
package market

import (
	"context"
	"time"

	"spyfly/internal/models"
)

// OptionType selects the contract side of a chain request.
type OptionType string

// Supported option types.
const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// SpotQuote is the current underlying price.
type SpotQuote struct {
	Price     float64
	Timestamp time.Time
}

// QuoteProvider supplies the underlying spot quote.
type QuoteProvider interface {
	GetSpotQuote(ctx context.Context) (SpotQuote, error)
}

// VolatilityProvider supplies a VIX-like annualized volatility proxy
// in percentage points. The engine divides by 100 for sigma.
type VolatilityProvider interface {
	GetVolatilityProxy(ctx context.Context) (float64, error)
}

// SentimentProvider supplies a sentiment score in [-1, 1].
type SentimentProvider interface {
	GetSentimentScore(ctx context.Context) (float64, error)
}

// ChainProvider supplies the option chain for one expiration.
type ChainProvider interface {
	GetOptionChain(ctx context.Context, expiration time.Time, optionType OptionType) ([]models.OptionQuote, error)
}

// DataProvider bundles every collaborator the engine consumes.
type DataProvider interface {
	QuoteProvider
	VolatilityProvider
	SentimentProvider
	ChainProvider
}
