package priceapi

import (
	"errors"
	"net/http"
	"strings"
)

// TickerPlaceholder is replaced with the path-escaped ticker in the base URL.
const TickerPlaceholder = "{ticker}"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=priceapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads a single `price` field from a JSON endpoint keyed by ticker.
type Client struct {
	// name identifies the endpoint in errors and logs.
	name string
	// baseURL is the endpoint URL template.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the price API client.
type ClientOption func(*Client)

// WithBaseURL sets the endpoint URL template.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a client for the endpoint at baseURL. A baseURL without
// the {ticker} placeholder gets the ticker appended as the last path segment.
func NewClient(name, baseURL string, options ...ClientOption) (*Client, error) {
	var client = &Client{
		name:       name,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	if strings.TrimSpace(client.baseURL) == "" {
		return nil, errors.New("priceapi: missing base URL")
	}
	if !strings.Contains(client.baseURL, TickerPlaceholder) {
		client.baseURL = strings.TrimRight(client.baseURL, "/") + "/" + TickerPlaceholder
	}
	return client, nil
}

func (c *Client) Name() string { return c.name }
