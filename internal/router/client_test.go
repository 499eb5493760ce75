package router

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/swingbot/internal/domain"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// Base URL carries the chain segment like the real API does.
	return New(srv.URL, 137)
}

func TestSpenderAddress(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/137/approve/spender", r.URL.Path)
		_, _ = w.Write([]byte(`{"address":"0x1111111254eeb25477b68fb85ed929f73a960582"}`))
	}))

	addr, err := c.SpenderAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x1111111254eeb25477b68fb85ed929f73a960582", addr)
}

func TestTokens_CachedAfterFirstFetch(t *testing.T) {
	calls := 0
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"tokens":{
			"0xaaa":{"symbol":"USDC","name":"USD Coin","decimals":6,"address":"0xaaa"},
			"0xbbb":{"symbol":"WMATIC","name":"Wrapped Matic","decimals":18,"address":"0xbbb"}
		}}`))
	}))

	tokens, err := c.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xaaa", tokens["USDC"].Address)
	assert.Equal(t, "0xbbb", tokens["WMATIC"].Address)

	_, err = c.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetQuote(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/137/quote", r.URL.Path)
		assert.Equal(t, "0xaaa", r.URL.Query().Get("fromTokenAddress"))
		assert.Equal(t, "1000000", r.URL.Query().Get("amount"))
		_, _ = w.Write([]byte(`{
			"fromToken":{"symbol":"USDC","decimals":6,"address":"0xaaa"},
			"toToken":{"symbol":"WMATIC","decimals":18,"address":"0xbbb"},
			"toTokenAmount":"990000000000000000",
			"estimatedGas":210000
		}`))
	}))

	from := domain.Token{Symbol: "USDC", Address: "0xaaa"}
	to := domain.Token{Symbol: "WMATIC", Address: "0xbbb"}
	quote, err := c.GetQuote(context.Background(), from, to, big.NewInt(1_000_000))
	require.NoError(t, err)

	assert.Equal(t, 6, quote.FromDecimals)
	assert.Equal(t, 18, quote.ToDecimals)
	assert.Equal(t, "WMATIC", quote.ToSymbol)

	want, _ := new(big.Int).SetString("990000000000000000", 10)
	assert.Equal(t, want, quote.ToAmount)
}

func TestGetQuote_RejectsIncompletePayload(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// toTokenAmount present but decimals missing.
		_, _ = w.Write([]byte(`{"toToken":{"symbol":"WMATIC"},"toTokenAmount":"1"}`))
	}))

	_, err := c.GetQuote(context.Background(),
		domain.Token{Address: "0xaaa"}, domain.Token{Address: "0xbbb"}, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimals")
}

func TestSwapTransaction(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/137/swap", r.URL.Path)
		assert.Equal(t, "0xwallet", r.URL.Query().Get("fromAddress"))
		assert.Equal(t, "1", r.URL.Query().Get("slippage"))
		_, _ = w.Write([]byte(`{
			"toTokenAmount":"990000",
			"tx":{"from":"0xwallet","to":"0xrouter","data":"0xdeadbeef","value":"0","gas":250000,"gasPrice":"30000000000"}
		}`))
	}))

	order := domain.SwapOrder{
		From:   domain.Token{Symbol: "USDC", Address: "0xaaa"},
		To:     domain.Token{Symbol: "WMATIC", Address: "0xbbb"},
		Amount: big.NewInt(1_000_000),
	}
	tx, err := c.SwapTransaction(context.Background(), order, "0xwallet", 1)
	require.NoError(t, err)
	assert.Equal(t, "0xrouter", tx.To)
	assert.Equal(t, "0xdeadbeef", tx.Data)
	assert.Equal(t, int64(250000), tx.Gas)
}

func TestSwapTransaction_RejectsMissingCalldata(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tx":{"to":"0xrouter","data":"0x"}}`))
	}))

	order := domain.SwapOrder{Amount: big.NewInt(1)}
	_, err := c.SwapTransaction(context.Background(), order, "0xwallet", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calldata")
}

func TestErrorStatusIncludesBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"insufficient liquidity"}`, http.StatusBadRequest)
	}))

	_, err := c.SpenderAddress(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "insufficient liquidity")
}
