package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pricesignal/internal/provider"
)

// Chain is an ordered list of sources for one price. All members are queried
// concurrently; the first present quote in declaration order wins.
type Chain []provider.Source

// Resolve returns the winning quote, or an absent quote tagged with the first
// member when none had a price. A member fault fails the whole chain, but only
// after every member has finished.
func (c Chain) Resolve(ctx context.Context, ticker string) (provider.Quote, error) {
	quotes := make([]provider.Quote, len(c))
	var g errgroup.Group
	for i, src := range c {
		g.Go(func() error {
			q, err := src.Quote(ctx, ticker)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return provider.Quote{Symbol: ticker}, err
	}
	return First(quotes), nil
}

// First picks the first present quote. With none present it returns the
// first (absent) quote so the caller keeps a source tag.
func First(quotes []provider.Quote) provider.Quote {
	for _, q := range quotes {
		if q.Price.IsPresent() {
			return q
		}
	}
	if len(quotes) == 0 {
		return provider.Quote{}
	}
	return quotes[0]
}
