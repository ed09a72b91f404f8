// Package pricing is the narrow market-data collaborator: ADA/USD from
// CoinGecko and native token prices in ADA from a token price API.
package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned when a source has no price for an asset.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceService answers the two price questions the settlement engine asks.
type PriceService interface {
	// GetAdaPrice returns the USD price of one ADA.
	GetAdaPrice(ctx context.Context) (decimal.Decimal, error)
	// GetTokenPrice returns the ADA price of one whole unit of a token.
	GetTokenPrice(ctx context.Context, policyID, assetName string) (decimal.Decimal, error)
}

// Market combines an ADA/USD source with a token price source.
type Market struct {
	ada    *CoinGeckoClient
	tokens *TokenPriceClient
}

// NewMarket creates a Market.
func NewMarket(ada *CoinGeckoClient, tokens *TokenPriceClient) *Market {
	return &Market{ada: ada, tokens: tokens}
}

// GetAdaPrice implements PriceService.
func (m *Market) GetAdaPrice(ctx context.Context) (decimal.Decimal, error) {
	return m.ada.AdaUSD(ctx)
}

// GetTokenPrice implements PriceService.
func (m *Market) GetTokenPrice(ctx context.Context, policyID, assetName string) (decimal.Decimal, error) {
	return m.tokens.Price(ctx, policyID+assetName)
}
