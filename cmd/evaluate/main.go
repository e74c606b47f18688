// Command evaluate runs one price comparison from the command line and
// prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"pricesignal/internal/config"
	"pricesignal/internal/evaluate"
	"pricesignal/internal/httpx"
	"pricesignal/internal/logging"
	"pricesignal/internal/ticker"
)

const (
	exitOK       = 0
	exitFault    = 1
	exitUsage    = 2
	exitNotFound = 3
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var tk, threshold, configPath, logLevel string
	var timeout int
	var color bool
	fs.StringVar(&tk, "ticker", getenv("TICKER", ""), "ticker symbol, e.g. TSLA (or first argument)")
	fs.StringVar(&threshold, "threshold", "", "signal threshold in dollars (default from config)")
	fs.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
	fs.StringVar(&logLevel, "log-level", getenv("LOG_LEVEL", "warn"), "log level")
	fs.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "overall timeout seconds")
	fs.BoolVar(&color, "color", false, "colorize JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if tk == "" && fs.NArg() > 0 {
		tk = fs.Arg(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFault
	}
	logger := logging.New(logLevel, "console").Output(zerolog.ConsoleWriter{Out: stderr, NoColor: !color})

	hc := httpx.New(time.Duration(cfg.Sources.TimeoutSec) * time.Second)
	hc.UserAgent = cfg.Sources.UserAgent
	svc, err := evaluate.FromConfig(cfg, hc)
	if err != nil {
		fmt.Fprintf(stderr, "sources: %v\n", err)
		return exitFault
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(ctx), time.Duration(timeout)*time.Second)
	defer cancel()

	q := url.Values{}
	if tk != "" { q.Set("ticker", tk) }
	if threshold != "" { q.Set("threshold", threshold) }
	res, err := svc.Evaluate(ctx, evaluate.Request{Query: q})
	switch {
	case err == nil:
		printJSON(stdout, res, color)
		return exitOK
	case errors.Is(err, ticker.ErrMissingTicker):
		fmt.Fprintln(stderr, "missing ticker: pass -ticker TSLA or a positional argument")
		fs.Usage()
		return exitUsage
	case errors.Is(err, evaluate.ErrNoPriceData):
		fmt.Fprintf(stderr, "%s: no price data\n", res.Ticker)
		return exitNotFound
	default:
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return exitFault
	}
}

func printJSON(w io.Writer, v any, color bool) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(w, "%v\n", v)
		return
	}
	b = pretty.Pretty(b)
	if color { b = pretty.Color(b, nil) }
	_, _ = w.Write(b)
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 { return x }
	}
	return def
}
