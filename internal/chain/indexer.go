package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	pageSize            = 100
	maxHistoryPages     = 20
	defaultMaxTries     = 4
	defaultInitialDelay = 500 * time.Millisecond
)

// Indexer is the read-only view of the chain.
type Indexer interface {
	AddressUTXOs(ctx context.Context, address string) ([]UTXO, error)
	Transaction(ctx context.Context, txHash string) (*TxInfo, error)
	AddressTransactions(ctx context.Context, address string) ([]AddressTx, error)
}

// IndexerClient is a Blockfrost-compatible indexer client. GETs are
// idempotent and retried with exponential backoff on 429 and 5xx.
type IndexerClient struct {
	baseURL      string
	projectID    string
	httpClient   *http.Client
	maxTries     uint
	initialDelay time.Duration
}

// IndexerOption customizes an IndexerClient.
type IndexerOption func(*IndexerClient)

// WithRetry sets the attempt budget and first backoff delay.
func WithRetry(maxTries uint, initialDelay time.Duration) IndexerOption {
	return func(c *IndexerClient) {
		c.maxTries = maxTries
		c.initialDelay = initialDelay
	}
}

// NewIndexerClient creates an indexer client.
func NewIndexerClient(baseURL, projectID string, httpClient *http.Client, opts ...IndexerOption) *IndexerClient {
	c := &IndexerClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		projectID:    projectID,
		httpClient:   httpClient,
		maxTries:     defaultMaxTries,
		initialDelay: defaultInitialDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddressUTXOs returns every unspent output at address. An address the
// indexer has never seen has no outputs.
func (c *IndexerClient) AddressUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var all []UTXO
	for page := 1; ; page++ {
		var batch []UTXO
		path := fmt.Sprintf("/addresses/%s/utxos?count=%d&page=%d", url.PathEscape(address), pageSize, page)
		err := c.get(ctx, path, &batch)
		if errors.Is(err, ErrNotFound) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("fetching utxos for %s: %w", address, err)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// Transaction returns block inclusion data for txHash, or ErrNotFound while
// the transaction is not on chain.
func (c *IndexerClient) Transaction(ctx context.Context, txHash string) (*TxInfo, error) {
	var info TxInfo
	if err := c.get(ctx, "/txs/"+url.PathEscape(txHash), &info); err != nil {
		return nil, fmt.Errorf("fetching tx %s: %w", txHash, err)
	}
	return &info, nil
}

// AddressTransactions returns the most recent transactions touching address,
// newest first, bounded to a fixed number of pages.
func (c *IndexerClient) AddressTransactions(ctx context.Context, address string) ([]AddressTx, error) {
	var all []AddressTx
	for page := 1; page <= maxHistoryPages; page++ {
		var batch []AddressTx
		path := fmt.Sprintf("/addresses/%s/transactions?count=%d&page=%d&order=desc", url.PathEscape(address), pageSize, page)
		err := c.get(ctx, path, &batch)
		if errors.Is(err, ErrNotFound) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("fetching history for %s: %w", address, err)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return all, nil
}

func (c *IndexerClient) get(ctx context.Context, path string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialDelay

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.getOnce(ctx, path, out)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
	return err
}

func (c *IndexerClient) getOnce(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return backoff.RetryAfter(secs)
		}
		return &GatewayError{StatusCode: resp.StatusCode, Message: "rate limited"}
	case resp.StatusCode >= 500:
		return &GatewayError{StatusCode: resp.StatusCode, Message: "indexer unavailable"}
	default:
		return backoff.Permanent(&GatewayError{StatusCode: resp.StatusCode, Message: "unexpected status"})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
