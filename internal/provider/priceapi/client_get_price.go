package priceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrMissingPrice     = errors.New("response has no numeric price")
)

// GetPrice performs one GET against the endpoint and returns its `price` field.
// The field must be a JSON number; strings, booleans and null are rejected.
func (c *Client) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	u := strings.ReplaceAll(c.baseURL, TickerPlaceholder, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return decimal.Zero, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return decimal.Zero, fmt.Errorf("%w: GET %s -> %d", ErrUnexpectedStatus, u, res.StatusCode)
	}

	var body map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decoding price response: %w", err)
	}

	// {"symbol":"TSLA","name":"Tesla, Inc.","price":252.03,"exchange":"NSDQ"}
	n, ok := body["price"].(json.Number)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w (got %T)", ErrMissingPrice, body["price"])
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decoding price %q: %w", n.String(), err)
	}
	return v, nil
}

// Fetch lets the client act as a provider.Fetcher.
func (c *Client) Fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	return c.GetPrice(ctx, ticker)
}
