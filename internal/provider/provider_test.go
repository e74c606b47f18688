package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	v   decimal.Decimal
	err error
	// block waits for ctx cancellation before returning.
	block bool
}

func (f fakeFetcher) Name() string { return "fake" }
func (f fakeFetcher) Fetch(ctx context.Context, _ string) (decimal.Decimal, error) {
	if f.block {
		<-ctx.Done()
		return decimal.Zero, ctx.Err()
	}
	return f.v, f.err
}

func TestPrice_OrAndRound(t *testing.T) {
	t.Parallel()

	a := Absent()
	p := Present(decimal.RequireFromString("3.174603"))

	require.False(t, a.IsPresent())
	require.True(t, a.Or(p).IsPresent())
	require.Equal(t, p, p.Or(Present(decimal.Zero)))
	require.Equal(t, "3.1746", p.Round(4).String())
	require.False(t, a.Round(4).IsPresent())
}

func TestPrice_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}{A: Present(decimal.RequireFromString("252.5")), B: Absent()})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":252.5,"b":null}`, string(b))

	var got struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	v, ok := got.A.Value()
	require.True(t, ok)
	require.True(t, v.Equal(decimal.RequireFromString("252.5")))
	require.False(t, got.B.IsPresent())
}

func TestParsePriceText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"$1,234.50": "1234.5",
		"250.00":    "250",
		"0":         "0",
		"-3.5":      "-3.5",
		"USD 12.":   "12",
		".75":       "0.75",
		"1.2.3":     "1.2",
	}
	for in, want := range cases {
		got := ParsePriceText(in)
		require.Truef(t, got.IsPresent(), "%q should parse", in)
		v, _ := got.Value()
		require.Truef(t, v.Equal(decimal.RequireFromString(want)), "%q: got %s want %s", in, v, want)
	}
	for _, in := range []string{"", "N/A", "-", "."} {
		require.Falsef(t, ParsePriceText(in).IsPresent(), "%q should be absent", in)
	}
}

func TestParseDecimal_TrailingJunk(t *testing.T) {
	t.Parallel()

	v, ok := ParseDecimal(" 7.5abc")
	require.True(t, ok)
	require.True(t, v.Equal(decimal.RequireFromString("7.5")))

	_, ok = ParseDecimal("abc")
	require.False(t, ok)
}

func TestParseDecimal_Exponent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"1e1":     "10",
		"1E+2":    "100",
		"2.5e-1":  "0.25",
		"-4e0abc": "-4",
		"7e":      "7",
		"7e+":     "7",
	}
	for in, want := range cases {
		v, ok := ParseDecimal(in)
		require.Truef(t, ok, "%q should parse", in)
		require.Truef(t, v.Equal(decimal.RequireFromString(want)), "%q: got %s want %s", in, v, want)
	}

	_, ok := ParseDecimal("e5")
	require.False(t, ok)
}

func TestAdapter_FailSoft(t *testing.T) {
	t.Parallel()

	ok := &Adapter{F: fakeFetcher{v: decimal.NewFromInt(260)}, Tag: SourceReal}
	q, err := ok.Quote(t.Context(), "TSLA")
	require.NoError(t, err)
	require.Equal(t, SourceReal, q.Source)
	require.Equal(t, "TSLA", q.Symbol)
	require.Equal(t, "260", q.Price.String())

	failing := &Adapter{F: fakeFetcher{err: errors.New("boom")}, Tag: SourceGame}
	q, err = failing.Quote(t.Context(), "TSLA")
	require.NoError(t, err)
	require.False(t, q.Price.IsPresent())

	slow := &Adapter{F: fakeFetcher{block: true}, Tag: SourceGame, Timeout: 10 * time.Millisecond}
	q, err = slow.Quote(t.Context(), "TSLA")
	require.NoError(t, err)
	require.False(t, q.Price.IsPresent())
}
