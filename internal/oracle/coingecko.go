// Package oracle implements the price-feed client against the CoinGecko
// REST API. Token symbols are resolved to CoinGecko coin ids once and
// cached for the life of the process.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avelkov/swingbot/internal/domain"
)

// CoinGecko is a domain.PriceOracle backed by the CoinGecko /simple/price
// endpoint, with /coins/list used for symbol resolution.
type CoinGecko struct {
	baseURL string
	client  *http.Client

	mu  sync.Mutex
	ids map[string]string // lowercase symbol -> coin id
}

// NewCoinGecko creates a client for the given API base URL, e.g.
// "https://api.coingecko.com/api/v3".
func NewCoinGecko(baseURL string) *CoinGecko {
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		ids:     make(map[string]string),
	}
}

type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Prices resolves each symbol to its coin id and returns current USD unit
// prices. An unknown symbol fails the whole call so the cycle aborts
// instead of trading on a partial view.
func (c *CoinGecko) Prices(ctx context.Context, symbols ...string) (map[string]float64, error) {
	ids := make([]string, 0, len(symbols))
	idToSymbol := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		id, err := c.coinID(ctx, sym)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		idToSymbol[id] = sym
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	var payload map[string]map[string]float64
	if err := c.getJSON(ctx, "/simple/price?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("oracle: fetch prices: %w", err)
	}

	prices := make(map[string]float64, len(symbols))
	for id, sym := range idToSymbol {
		usd, ok := payload[id]["usd"]
		if !ok {
			return nil, fmt.Errorf("oracle: no usd price for %s (%s): %w", sym, id, domain.ErrUnknownSymbol)
		}
		prices[sym] = usd
	}
	return prices, nil
}

// coinID resolves a token symbol to a CoinGecko coin id, fetching and
// caching the full coin list on first use.
func (c *CoinGecko) coinID(ctx context.Context, symbol string) (string, error) {
	key := strings.ToLower(symbol)

	c.mu.Lock()
	id, ok := c.ids[key]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	var list []coinListEntry
	if err := c.getJSON(ctx, "/coins/list", &list); err != nil {
		return "", fmt.Errorf("oracle: fetch coin list: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range list {
		sym := strings.ToLower(entry.Symbol)
		// First listing wins, matching the resolution the bot always used.
		if _, seen := c.ids[sym]; !seen {
			c.ids[sym] = entry.ID
		}
	}

	id, ok = c.ids[key]
	if !ok {
		return "", fmt.Errorf("oracle: resolve %s: %w", symbol, domain.ErrUnknownSymbol)
	}
	return id, nil
}

func (c *CoinGecko) getJSON(ctx context.Context, path string, out any) error {
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

// Compile-time interface check.
var _ domain.PriceOracle = (*CoinGecko)(nil)
