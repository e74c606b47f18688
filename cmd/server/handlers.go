package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pricesignal/internal/evaluate"
	"pricesignal/internal/metrics"
	"pricesignal/internal/provider/yahoo"
	"pricesignal/internal/ticker"
)

const (
	missingTickerMsg = "Missing required ticker. Use path `/evaluate/TSLA` or `?ticker=TSLA`"
	noPriceDataMsg   = "No price data found for ticker"
	missingSymbolMsg = "Missing required symbol. Use /stocks/TSLA, /stock/TSLA or ?symbol=TSLA"
	stockNotFoundMsg = "Stock not found"
)

// stockPrefixes are the path shapes the stock lookup answers on.
var stockPrefixes = []string{
	"/.netlify/functions/stock",
	"/.netlify/functions/stocks",
	"/stock",
	"/stocks",
}

type stockLooker interface {
	Lookup(ctx context.Context, ticker string) (yahoo.Stock, error)
}

type server struct {
	eval    *evaluate.Service
	stocks  stockLooker
	log     zerolog.Logger
	timeout time.Duration
}

type evaluateError struct {
	Error        string  `json:"error"`
	Ticker       string  `json:"ticker,omitempty"`
	ParsedTicker *string `json:"parsedTicker"`
}

type errorBody struct {
	Error  string `json:"error"`
	Ticker string `json:"ticker,omitempty"`
	Status int    `json:"status,omitempty"`
}

func (s *server) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for _, p := range []string{"/evaluate", "/evaluate/", "/.netlify/functions/evaluate", "/.netlify/functions/evaluate/"} {
		api.HandleFunc("GET "+p, s.handleEvaluate)
	}
	for _, p := range stockPrefixes {
		api.HandleFunc("GET "+p, s.handleStock)
		api.HandleFunc("GET "+p+"/", s.handleStock)
	}

	root := http.NewServeMux()
	// promhttp negotiates its own content type and compression.
	root.Handle("/metrics", metrics.Handler())
	root.Handle("/", withJSONHeaders(withGzip(recoverPanic(limitBody(api)))))
	return withRequestLog(s.log, root)
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.eval.Evaluate(ctx, evaluate.Request{Path: r.URL.EscapedPath(), Query: r.URL.Query()})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, ticker.ErrMissingTicker):
		writeJSON(w, http.StatusBadRequest, evaluateError{Error: missingTickerMsg})
	case errors.Is(err, evaluate.ErrNoPriceData):
		writeJSON(w, http.StatusNotFound, evaluateError{Error: noPriceDataMsg, Ticker: res.Ticker, ParsedTicker: &res.Ticker})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("ticker", res.Ticker).Msg("evaluate failed")
		body := evaluateError{Error: err.Error()}
		if res.Ticker != "" {
			body.ParsedTicker = &res.Ticker
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

func (s *server) handleStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := ticker.Normalize(q.Get("symbol"))
	if symbol == "" {
		symbol = ticker.Normalize(q.Get("ticker"))
	}
	if symbol == "" {
		symbol, _ = ticker.NewResolver(stockPrefixes...).Resolve(r.URL.EscapedPath(), nil)
	}
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: missingSymbolMsg})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	st, err := s.stocks.Lookup(ctx, symbol)
	var se *yahoo.StatusError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, st)
	case errors.As(err, &se):
		writeJSON(w, http.StatusNotFound, errorBody{Error: stockNotFoundMsg, Ticker: symbol, Status: se.Status})
	case errors.Is(err, yahoo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: stockNotFoundMsg, Ticker: symbol})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("symbol", symbol).Msg("stock lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func (s *server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
