package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/swingbot/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	listCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/list", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"usd-coin","symbol":"usdc","name":"USD Coin"},
			{"id":"fake-usdc","symbol":"usdc","name":"Fake USDC"},
			{"id":"wmatic","symbol":"wmatic","name":"Wrapped Matic"}
		]`))
	})
	mux.HandleFunc("/simple/price", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"usd-coin":{"usd":1.0},"wmatic":{"usd":0.52}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &listCalls
}

func TestPrices(t *testing.T) {
	srv, _ := newTestServer(t)
	cg := NewCoinGecko(srv.URL)

	prices, err := cg.Prices(context.Background(), "USDC", "WMATIC")
	require.NoError(t, err)
	assert.Equal(t, 1.0, prices["USDC"])
	assert.Equal(t, 0.52, prices["WMATIC"])
}

func TestPrices_FirstListingWinsAndListIsCached(t *testing.T) {
	srv, listCalls := newTestServer(t)
	cg := NewCoinGecko(srv.URL)

	_, err := cg.Prices(context.Background(), "usdc")
	require.NoError(t, err)
	_, err = cg.Prices(context.Background(), "WMATIC")
	require.NoError(t, err)

	// Duplicate symbol resolved to the first listing; one list fetch total.
	assert.Equal(t, 1, *listCalls)
}

func TestPrices_UnknownSymbol(t *testing.T) {
	srv, _ := newTestServer(t)
	cg := NewCoinGecko(srv.URL)

	_, err := cg.Prices(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownSymbol))
}

func TestPrices_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cg := NewCoinGecko(srv.URL)
	_, err := cg.Prices(context.Background(), "USDC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
