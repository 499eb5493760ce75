// Package router implements the swap-router client against the 1inch
// aggregation API (v5.0). It resolves the tracked pair to on-chain token
// addresses, produces quotes for the decision engine, and builds the raw
// approve and swap transactions executed by the executor.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avelkov/swingbot/internal/domain"
)

// Client talks to one chain's router API, base URL
// "{baseURL}/{chainID}", e.g. "https://api.1inch.io/v5.0/137".
type Client struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	tokens map[string]domain.Token // upper-case symbol -> token, cached
}

// New creates a router Client for the given API base URL and chain.
func New(baseURL string, chainID int) *Client {
	return &Client{
		baseURL: fmt.Sprintf("%s/%d", strings.TrimRight(baseURL, "/"), chainID),
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// SpenderAddress returns the router contract address that must be approved
// to spend the source token.
func (c *Client) SpenderAddress(ctx context.Context) (string, error) {
	var resp spenderResponse
	if err := c.getJSON(ctx, "/approve/spender", &resp); err != nil {
		return "", fmt.Errorf("router: get spender: %w", err)
	}
	if resp.Address == "" {
		return "", fmt.Errorf("router: spender response missing address")
	}
	return resp.Address, nil
}

// Tokens returns the router's supported tokens keyed by upper-case symbol.
// The list is fetched once and cached for the life of the process.
func (c *Client) Tokens(ctx context.Context) (map[string]domain.Token, error) {
	c.mu.Lock()
	cached := c.tokens
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	var resp tokensResponse
	if err := c.getJSON(ctx, "/tokens", &resp); err != nil {
		return nil, fmt.Errorf("router: get tokens: %w", err)
	}

	tokens := make(map[string]domain.Token, len(resp.Tokens))
	for addr, info := range resp.Tokens {
		address := info.Address
		if address == "" {
			address = addr
		}
		tokens[strings.ToUpper(info.Symbol)] = domain.Token{
			Symbol:  info.Symbol,
			Address: address,
		}
	}

	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()
	return tokens, nil
}

// GetQuote estimates the destination amount for swapping amount of from
// into to. The response is validated at this boundary so the engine only
// ever sees complete quotes.
func (c *Client) GetQuote(ctx context.Context, from, to domain.Token, amount *big.Int) (*domain.Quote, error) {
	q := url.Values{}
	q.Set("fromTokenAddress", from.Address)
	q.Set("toTokenAddress", to.Address)
	q.Set("amount", amount.String())

	var resp quoteResponse
	if err := c.getJSON(ctx, "/quote?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("router: get quote: %w", err)
	}
	if err := resp.validate(); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	toAmount, err := parseAmount(resp.ToTokenAmount, "toToken")
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		FromSymbol:   resp.FromToken.Symbol,
		ToSymbol:     resp.ToToken.Symbol,
		FromDecimals: resp.FromToken.Decimals,
		ToDecimals:   resp.ToToken.Decimals,
		ToAmount:     toAmount,
	}, nil
}

// ApproveTransaction builds the calldata approving the router to spend
// amount of the given token.
func (c *Client) ApproveTransaction(ctx context.Context, tokenAddress string, amount *big.Int) (*Transaction, error) {
	q := url.Values{}
	q.Set("tokenAddress", tokenAddress)
	q.Set("amount", amount.String())

	var resp approveTxResponse
	if err := c.getJSON(ctx, "/approve/transaction?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("router: get approve tx: %w", err)
	}

	tx := &Transaction{
		To:       resp.To,
		Data:     resp.Data,
		Value:    resp.Value,
		GasPrice: resp.GasPrice,
	}
	if err := tx.validate(); err != nil {
		return nil, fmt.Errorf("router: approve: %w", err)
	}
	return tx, nil
}

// SwapTransaction builds the swap calldata for the given order on behalf
// of fromAddress, with the router applying slippagePercent protection.
func (c *Client) SwapTransaction(ctx context.Context, order domain.SwapOrder, fromAddress string, slippagePercent float64) (*Transaction, error) {
	q := url.Values{}
	q.Set("fromTokenAddress", order.From.Address)
	q.Set("toTokenAddress", order.To.Address)
	q.Set("amount", order.Amount.String())
	q.Set("fromAddress", fromAddress)
	q.Set("slippage", fmt.Sprintf("%v", slippagePercent))

	var resp swapResponse
	if err := c.getJSON(ctx, "/swap?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("router: get swap tx: %w", err)
	}
	if err := resp.Tx.validate(); err != nil {
		return nil, fmt.Errorf("router: swap: %w", err)
	}
	return &resp.Tx, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ domain.QuoteProvider = (*Client)(nil)
	_ domain.TokenLister   = (*Client)(nil)
)
