// Package evaluate runs one price comparison: resolve the ticker, gather the
// game and real prices concurrently, and classify the difference.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pricesignal/internal/aggregate"
	"pricesignal/internal/metrics"
	"pricesignal/internal/provider"
	"pricesignal/internal/signal"
	"pricesignal/internal/ticker"
)

//go:generate mockgen -package=evaluate_test -destination=mock_source_test.go pricesignal/internal/provider Source

// ErrNoPriceData means neither a game nor a real price could be found.
var ErrNoPriceData = errors.New("no price data found for ticker")

// NoPriceDataError carries the ticker that had no prices.
type NoPriceDataError struct {
	Ticker string
}

func (e *NoPriceDataError) Error() string { return fmt.Sprintf("%s: %s", ErrNoPriceData, e.Ticker) }

func (e *NoPriceDataError) Unwrap() error { return ErrNoPriceData }

// Request is the transport-independent input.
type Request struct {
	Path  string
	Query url.Values
}

// Result is the outcome of one evaluation.
type Result struct {
	Ticker      string         `json:"ticker"`
	GamePrice   provider.Price `json:"gamePrice"`
	RealPrice   provider.Price `json:"realPrice"`
	Diff        provider.Price `json:"diff"`
	DiffPercent provider.Price `json:"diffPercent"`
	Signal      signal.Signal  `json:"signal"`

	// GameSource records which source supplied the game price.
	GameSource provider.SourceTag `json:"-"`
	Threshold  decimal.Decimal    `json:"-"`
}

// Service evaluates tickers against the configured price chains.
type Service struct {
	Resolver *ticker.Resolver
	// Game is tried in order: live game price first, reference data second.
	Game aggregate.Chain
	Real aggregate.Chain
	// DefaultThreshold applies when the request has no valid threshold.
	DefaultThreshold decimal.Decimal
}

func New(resolver *ticker.Resolver, game, market aggregate.Chain) *Service {
	if resolver == nil {
		resolver = ticker.NewResolver()
	}
	return &Service{Resolver: resolver, Game: game, Real: market, DefaultThreshold: signal.DefaultThreshold}
}

// Evaluate resolves the ticker and threshold from req and evaluates it.
// On failure the returned Result still carries the ticker when one was
// resolved.
func (s *Service) Evaluate(ctx context.Context, req Request) (Result, error) {
	tk, err := s.Resolver.Resolve(req.Path, req.Query)
	if err != nil {
		metrics.Evaluations.WithLabelValues("missing_ticker").Inc()
		return Result{}, err
	}
	threshold := signal.ParseThreshold(req.Query.Get("threshold"), s.DefaultThreshold)
	return s.EvaluateTicker(ctx, tk, threshold)
}

// EvaluateTicker evaluates an already normalized ticker.
func (s *Service) EvaluateTicker(ctx context.Context, tk string, threshold decimal.Decimal) (Result, error) {
	res := Result{Ticker: tk, Threshold: threshold}

	// Each lookup writes only its own slot; the join is the only sync needed.
	var gameQ, realQ provider.Quote
	var g errgroup.Group
	g.Go(func() (err error) {
		gameQ, err = s.Game.Resolve(ctx, tk)
		return err
	})
	g.Go(func() (err error) {
		realQ, err = s.Real.Resolve(ctx, tk)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.Evaluations.WithLabelValues("error").Inc()
		return res, fmt.Errorf("evaluate %s: %w", tk, err)
	}

	if !gameQ.Price.IsPresent() && !realQ.Price.IsPresent() {
		metrics.Evaluations.WithLabelValues("no_price_data").Inc()
		return res, &NoPriceDataError{Ticker: tk}
	}

	out := signal.Compute(gameQ.Price, realQ.Price, threshold)
	res.GamePrice = gameQ.Price
	res.RealPrice = realQ.Price
	res.GameSource = gameQ.Source
	res.Diff = out.Diff
	res.DiffPercent = out.DiffPercent
	res.Signal = out.Signal

	metrics.Evaluations.WithLabelValues("ok").Inc()
	if res.Signal != signal.None {
		metrics.Signals.WithLabelValues(string(res.Signal)).Inc()
	}
	zerolog.Ctx(ctx).Debug().
		Str("ticker", tk).
		Stringer("game", res.GamePrice).
		Str("game_source", string(res.GameSource)).
		Stringer("real", res.RealPrice).
		Stringer("threshold", threshold).
		Str("signal", string(res.Signal)).
		Msg("evaluated")
	return res, nil
}
