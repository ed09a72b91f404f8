package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenPriceClient fetches token prices quoted in ADA. Units are policy id
// concatenated with the hex asset name.
type TokenPriceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTokenPriceClient creates a token price client.
func NewTokenPriceClient(baseURL, apiKey string, httpClient *http.Client) *TokenPriceClient {
	return &TokenPriceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Prices returns ADA prices for units. Units without a quote are absent
// from the result.
func (c *TokenPriceClient) Prices(ctx context.Context, units []string) (map[string]decimal.Decimal, error) {
	jsonBody, err := json.Marshal(units)
	if err != nil {
		return nil, fmt.Errorf("marshaling units: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/prices", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching token prices: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching token prices: unexpected status %d", resp.StatusCode)
	}

	var result map[string]json.Number
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding token prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(result))
	for unit, raw := range result {
		p, err := decimal.NewFromString(raw.String())
		if err != nil {
			continue
		}
		prices[unit] = p
	}
	return prices, nil
}

// Price returns the ADA price of one unit.
func (c *TokenPriceClient) Price(ctx context.Context, unit string) (decimal.Decimal, error) {
	prices, err := c.Prices(ctx, []string{unit})
	if err != nil {
		return decimal.Zero, err
	}
	p, ok := prices[unit]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceUnavailable, unit)
	}
	return p, nil
}
