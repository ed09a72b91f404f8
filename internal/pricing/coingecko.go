package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// CoinGeckoClient fetches the ADA/USD spot price.
type CoinGeckoClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewCoinGeckoClient creates a CoinGecko client against baseURL
// (e.g. https://api.coingecko.com/api/v3).
func NewCoinGeckoClient(baseURL string, httpClient *http.Client) *CoinGeckoClient {
	return &CoinGeckoClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// AdaUSD returns the current USD price of ADA.
func (c *CoinGeckoClient) AdaUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?ids=cardano&vs_currencies=usd", nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching ada price: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetching ada price: unexpected status %d", resp.StatusCode)
	}

	var result map[string]map[string]json.Number
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("decoding ada price: %w", err)
	}

	raw, ok := result["cardano"]["usd"]
	if !ok {
		return decimal.Zero, ErrPriceUnavailable
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ada price %q: %w", raw, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return price, nil
}
