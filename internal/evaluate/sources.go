package evaluate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pricesignal/internal/aggregate"
	"pricesignal/internal/config"
	"pricesignal/internal/httpx"
	"pricesignal/internal/provider"
	"pricesignal/internal/provider/priceapi"
	"pricesignal/internal/provider/ratelimit"
	"pricesignal/internal/provider/yahoo"
	"pricesignal/internal/refdata"
	"pricesignal/internal/ticker"
)

// FromConfig wires the game chain (live game price, then reference data) and
// the real chain (live market price only) described by cfg.
func FromConfig(cfg config.Config, hc *httpx.Client) (*Service, error) {
	timeout := time.Duration(cfg.Sources.TimeoutSec) * time.Second

	gameFetcher, err := newFetcher("game", cfg.Game, cfg, hc)
	if err != nil {
		return nil, err
	}
	realFetcher, err := newFetcher("real", cfg.Real, cfg, hc)
	if err != nil {
		return nil, err
	}

	game := aggregate.Chain{
		&provider.Adapter{F: gameFetcher, Tag: provider.SourceGame, Timeout: timeout},
		refdata.NewStore(cfg.Reference.CSVPath),
	}
	market := aggregate.Chain{
		&provider.Adapter{F: realFetcher, Tag: provider.SourceReal, Timeout: timeout},
	}

	svc := New(ticker.NewResolver(cfg.Evaluate.PathPrefixes...), game, market)
	svc.DefaultThreshold = decimal.NewFromFloat(cfg.Evaluate.DefaultThreshold)
	return svc, nil
}

func newFetcher(name string, src config.Source, cfg config.Config, hc *httpx.Client) (provider.Fetcher, error) {
	var f provider.Fetcher
	switch src.Provider {
	case config.ProviderYahoo:
		f = yahoo.New(yahoo.Config{Name: name, URL: cfg.Yahoo.Endpoint, UserAgent: cfg.Yahoo.UserAgent}, hc)
	case config.ProviderEndpoint, "":
		c, err := priceapi.NewClient(name, src.Endpoint, priceapi.WithHTTPClient(hc))
		if err != nil {
			return nil, fmt.Errorf("%s source: %w", name, err)
		}
		f = c
	default:
		return nil, fmt.Errorf("%s source: unknown provider %q", name, src.Provider)
	}
	return ratelimit.Wrap(f, src.MaxRequestsPerMinute, src.Burst, time.Duration(src.MinRequestIntervalSec)*time.Second), nil
}
