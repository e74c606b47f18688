package yahoo

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

	"pricesignal/internal/provider"
)

const (
	DefaultURL       = "https://query1.finance.yahoo.com/v8/finance/chart/{ticker}?interval=1d"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrNotFound is returned when the chart API has no data for a symbol.
var ErrNotFound = errors.New("stock not found")

// exchangeAliases shortens the long exchange names the chart API reports.
var exchangeAliases = map[string]string{
	"NasdaqGS":                "NSDQ",
	"New York Stock Exchange": "NYSE",
	"NYSE American":           "AMEX",
	"Cboe":                    "CBOE",
	"Toronto Stock Exchange":  "TSX",
	"London Stock Exchange":   "LSE",
}

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Name      string
	URL       string // chart endpoint; {ticker} is replaced
	UserAgent string
}

// Stock is the summary served by the stock lookup endpoint.
type Stock struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Price    provider.Price `json:"price"`
	Exchange string         `json:"exchange"`
}

// StatusError carries the upstream status of a failed lookup.
type StatusError struct {
	Ticker string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chart %s -> %d", e.Ticker, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrNotFound }

// Provider looks up quotes on the Yahoo Finance chart API.
type Provider struct {
	cfg    Config
	client HTTPClient
}

func New(cfg Config, hc HTTPClient) *Provider {
	if cfg.Name == "" { cfg.Name = "Yahoo" }
	if cfg.URL == "" { cfg.URL = DefaultURL }
	if cfg.UserAgent == "" { cfg.UserAgent = DefaultUserAgent }
	if hc == nil { hc = http.DefaultClient }
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Lookup fetches the chart metadata for ticker.
func (p *Provider) Lookup(ctx context.Context, ticker string) (Stock, error) {
	u := strings.ReplaceAll(p.cfg.URL, "{ticker}", url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil { return Stock{}, err }
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil { return Stock{}, err }
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Stock{}, &StatusError{Ticker: ticker, Status: resp.StatusCode}
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Stock{}, fmt.Errorf("decode: %w", err)
	}
	if len(body.Chart.Result) == 0 || body.Chart.Result[0].Meta == nil {
		return Stock{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	m := body.Chart.Result[0].Meta

	name := m.ShortName
	if name == "" { name = m.LongName }
	exchange := m.ExchangeName
	if alias, ok := exchangeAliases[m.FullExchangeName]; ok { exchange = alias }

	price := provider.Absent()
	if m.RegularMarketPrice != nil {
		v, err := decimal.NewFromString(m.RegularMarketPrice.String())
		if err != nil { return Stock{}, fmt.Errorf("decode price: %w", err) }
		price = provider.Present(v)
	}
	return Stock{Symbol: m.Symbol, Name: name, Price: price, Exchange: exchange}, nil
}

// Fetch lets the chart API serve as a real-price provider.Fetcher.
func (p *Provider) Fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	s, err := p.Lookup(ctx, ticker)
	if err != nil { return decimal.Zero, err }
	v, ok := s.Price.Value()
	if !ok { return decimal.Zero, fmt.Errorf("%s: no regularMarketPrice", ticker) }
	return v, nil
}

// Response model, trimmed to the fields we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta *meta `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

type meta struct {
	Symbol             string       `json:"symbol"`
	ShortName          string       `json:"shortName"`
	LongName           string       `json:"longName"`
	RegularMarketPrice *json.Number `json:"regularMarketPrice"`
	FullExchangeName   string       `json:"fullExchangeName"`
	ExchangeName       string       `json:"exchangeName"`
}
