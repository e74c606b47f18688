package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pricesignal/internal/metrics"
)

// Adapter turns a Fetcher into a fail-soft Source: any fetch error yields an
// absent quote and is only logged and counted.
type Adapter struct {
	F   Fetcher
	Tag SourceTag
	// Timeout bounds a single fetch. Zero leaves the caller's deadline alone.
	Timeout time.Duration
}

func (a *Adapter) Name() string { return a.F.Name() }

func (a *Adapter) Quote(ctx context.Context, ticker string) (Quote, error) {
	q := Quote{Symbol: ticker, Source: a.Tag}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	v, err := a.F.Fetch(ctx, ticker)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, a.F.Name(), err)
		zerolog.Ctx(ctx).Debug().Err(err).Str("source", string(a.Tag)).Str("ticker", ticker).Msg("price source absent")
		metrics.SourceFetches.WithLabelValues(string(a.Tag), "absent").Inc()
		return q, nil
	}
	metrics.SourceFetches.WithLabelValues(string(a.Tag), "present").Inc()
	q.Price = Present(v)
	return q, nil
}
