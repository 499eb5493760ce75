package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/avelkov/swingbot/internal/domain"
)

// Hash field names, kept identical to what earlier deployments wrote so
// existing records remain readable.
const (
	fieldBuyLimit  = "BuyLimitPrice"
	fieldSellLimit = "SellLimitPrice"
	fieldStopLimit = "StopLimitPrice"
)

// LimitStore implements domain.LimitStore using one Redis hash per pair
// key (e.g. "USDC_WMATIC").
type LimitStore struct {
	rdb *redis.Client
}

// NewLimitStore creates a LimitStore backed by the given Client.
func NewLimitStore(c *Client) *LimitStore {
	return &LimitStore{rdb: c.Underlying()}
}

// Get reads the limit prices for pairKey. Absent records and absent or
// unparsable fields fall back to the inactive defaults: buying blocked,
// stop disabled, sell at the never-sentinel.
func (s *LimitStore) Get(ctx context.Context, pairKey string) (domain.LimitPrices, error) {
	vals, err := s.rdb.HGetAll(ctx, pairKey).Result()
	if err != nil {
		return domain.LimitPrices{}, fmt.Errorf("redis: get limits %s: %w", pairKey, err)
	}

	limits := domain.InactiveLimits()
	if v, ok := parseField(vals, fieldBuyLimit); ok {
		limits.Buy = v
	}
	if v, ok := parseField(vals, fieldSellLimit); ok {
		limits.Sell = v
	}
	if v, ok := parseField(vals, fieldStopLimit); ok {
		limits.Stop = v
	}
	return limits, nil
}

// Put writes all three limit prices for pairKey in a single HSET.
func (s *LimitStore) Put(ctx context.Context, pairKey string, limits domain.LimitPrices) error {
	fields := map[string]interface{}{
		fieldBuyLimit:  formatPrice(limits.Buy),
		fieldSellLimit: formatPrice(limits.Sell),
		fieldStopLimit: formatPrice(limits.Stop),
	}
	if err := s.rdb.HSet(ctx, pairKey, fields).Err(); err != nil {
		return fmt.Errorf("redis: put limits %s: %w", pairKey, err)
	}
	return nil
}

func parseField(vals map[string]string, field string) (float64, bool) {
	raw, ok := vals[field]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Compile-time interface check.
var _ domain.LimitStore = (*LimitStore)(nil)
