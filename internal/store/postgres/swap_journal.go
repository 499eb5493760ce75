package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelkov/swingbot/internal/domain"
)

// SwapJournal implements domain.SwapJournal using PostgreSQL. It records
// every executed swap for operators; trading state never depends on it.
type SwapJournal struct {
	pool *pgxpool.Pool
}

// NewSwapJournal creates a SwapJournal backed by the given connection pool.
func NewSwapJournal(pool *pgxpool.Pool) *SwapJournal {
	return &SwapJournal{pool: pool}
}

// Insert records one executed swap.
func (j *SwapJournal) Insert(ctx context.Context, rec domain.SwapRecord) error {
	const query = `
		INSERT INTO swaps (
			id, pair, side, from_symbol, to_symbol,
			amount_in, amount_out, price, slippage, tx_hash, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := j.pool.Exec(ctx, query,
		rec.ID, rec.Pair, rec.Side, rec.FromSymbol, rec.ToSymbol,
		rec.AmountIn, rec.AmountOut, rec.Price, rec.Slippage,
		rec.TxHash, rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert swap %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent swaps for a pair, newest first.
func (j *SwapJournal) List(ctx context.Context, pair string, limit int) ([]domain.SwapRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, pair, side, from_symbol, to_symbol,
			amount_in, amount_out, price, slippage, tx_hash, executed_at
		FROM swaps
		WHERE pair = $1
		ORDER BY executed_at DESC
		LIMIT $2`

	rows, err := j.pool.Query(ctx, query, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list swaps %s: %w", pair, err)
	}
	defer rows.Close()

	var recs []domain.SwapRecord
	for rows.Next() {
		var r domain.SwapRecord
		if err := rows.Scan(
			&r.ID, &r.Pair, &r.Side, &r.FromSymbol, &r.ToSymbol,
			&r.AmountIn, &r.AmountOut, &r.Price, &r.Slippage,
			&r.TxHash, &r.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan swap row: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Compile-time interface check.
var _ domain.SwapJournal = (*SwapJournal)(nil)
