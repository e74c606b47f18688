package yahoo

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const tslaChart = `{"chart":{"result":[{"meta":{"symbol":"TSLA","shortName":"Tesla, Inc.","longName":"Tesla, Inc. Common Stock","regularMarketPrice":252.03,"fullExchangeName":"NasdaqGS","exchangeName":"NMS"}}],"error":null}}`

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{URL: srv.URL + "/v8/finance/chart/{ticker}?interval=1d"}, srv.Client())
}

func TestLookup_MapsExchangeAndName(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		require.Equal(t, "1d", r.URL.Query().Get("interval"))
		require.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(tslaChart))
	})

	s, err := p.Lookup(t.Context(), "TSLA")
	require.NoError(t, err)
	require.Equal(t, "TSLA", s.Symbol)
	require.Equal(t, "Tesla, Inc.", s.Name)
	require.Equal(t, "NSDQ", s.Exchange)
	require.Equal(t, "252.03", s.Price.String())

	v, err := p.Fetch(t.Context(), "TSLA")
	require.NoError(t, err)
	require.Equal(t, "252.03", v.String())
}

func TestLookup_FallsBackToLongNameAndRawExchange(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SHOP.TO","longName":"Shopify Inc.","regularMarketPrice":101.5,"fullExchangeName":"Some Exchange","exchangeName":"XYZ"}}]}}`))
	})

	s, err := p.Lookup(t.Context(), "SHOP.TO")
	require.NoError(t, err)
	require.Equal(t, "Shopify Inc.", s.Name)
	require.Equal(t, "XYZ", s.Exchange)
}

func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := p.Lookup(t.Context(), "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.Status)

	empty := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found"}}}`))
	})
	_, err = empty.Lookup(t.Context(), "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetch_MissingPrice(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"HALT"}}]}}`))
	})
	s, err := p.Lookup(t.Context(), "HALT")
	require.NoError(t, err)
	require.False(t, s.Price.IsPresent())

	_, err = p.Fetch(t.Context(), "HALT")
	require.Error(t, err)
}
