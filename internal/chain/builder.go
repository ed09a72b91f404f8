package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Builder builds and submits transactions.
type Builder interface {
	BuildTransaction(ctx context.Context, spec TxSpec) (*BuildResult, error)
	SubmitTransaction(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
}

// BuilderClient talks to the external transaction builder service.
type BuilderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewBuilderClient creates a builder client. The http client's timeout bounds
// every call.
func NewBuilderClient(baseURL, apiKey string, httpClient *http.Client) *BuilderClient {
	return &BuilderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// BuildTransaction posts spec to /transactions/build.
func (c *BuilderClient) BuildTransaction(ctx context.Context, spec TxSpec) (*BuildResult, error) {
	var result BuildResult
	status, msg, err := c.post(ctx, "/transactions/build", spec, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, TranslateBuildError(status, msg)
	}
	if result.Complete == "" {
		return nil, &GatewayError{StatusCode: status, Message: "builder returned no transaction"}
	}
	return &result, nil
}

// SubmitTransaction posts a signed transaction to /transactions/submit.
func (c *BuilderClient) SubmitTransaction(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	var result SubmitResult
	status, msg, err := c.post(ctx, "/transactions/submit", req, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusAccepted {
		return nil, TranslateSubmitError(status, msg)
	}
	if result.TxHash == "" {
		return nil, &GatewayError{StatusCode: status, Message: "builder returned no tx hash"}
	}
	return &result, nil
}

// post sends body as JSON. On a 2xx it decodes into out; otherwise it
// returns the status and the error message extracted from the response.
func (c *BuilderClient) post(ctx context.Context, path string, body, out any) (int, string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", &GatewayError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, "", &GatewayError{StatusCode: resp.StatusCode, Message: "reading response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, errorMessage(raw), nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return 0, "", &GatewayError{StatusCode: resp.StatusCode, Message: "decoding response: " + err.Error()}
	}
	return resp.StatusCode, "", nil
}

// errorMessage pulls the free-text error out of a builder error body. The
// builder has used both {"message"} and {"error"} over time.
func errorMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil {
			return s
		}
		return string(body.Error)
	}
	return strings.TrimSpace(string(raw))
}
