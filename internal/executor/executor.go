// Package executor performs on-chain swaps: it ensures the router has a
// sufficient allowance on the source token, fetches the swap calldata,
// signs, broadcasts, and waits for the transaction to be mined.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/avelkov/swingbot/internal/domain"
	"github.com/avelkov/swingbot/internal/router"
	"github.com/avelkov/swingbot/internal/wallet"
)

// SwapExecutor implements domain.SwapExecutor against the 1inch router
// and a signing wallet. Swap is non-idempotent: the caller must treat a
// failure after invocation as a potentially committed trade.
type SwapExecutor struct {
	router          *router.Client
	wallet          *wallet.Wallet
	slippagePercent float64
	logger          *slog.Logger
}

// New creates a SwapExecutor. slippagePercent is forwarded to the router
// as the on-chain slippage protection for the swap calldata.
func New(r *router.Client, w *wallet.Wallet, slippagePercent float64, logger *slog.Logger) *SwapExecutor {
	return &SwapExecutor{
		router:          r,
		wallet:          w,
		slippagePercent: slippagePercent,
		logger:          logger.With(slog.String("component", "executor")),
	}
}

// Swap executes the order and returns the swap transaction hash. It
// blocks until the transaction is mined; a reverted transaction is an
// error.
func (e *SwapExecutor) Swap(ctx context.Context, order domain.SwapOrder) (string, error) {
	spender, err := e.router.SpenderAddress(ctx)
	if err != nil {
		return "", err
	}

	if err := e.ensureAllowance(ctx, order, spender); err != nil {
		return "", err
	}

	swapTx, err := e.router.SwapTransaction(ctx, order, e.wallet.Address().Hex(), e.slippagePercent)
	if err != nil {
		return "", err
	}

	receipt, txHash, err := e.sendAndWait(ctx, swapTx)
	if err != nil {
		return "", fmt.Errorf("executor: swap %s->%s: %w", order.From.Symbol, order.To.Symbol, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("executor: swap tx %s: %w", txHash.Hex(), domain.ErrSwapReverted)
	}

	e.logger.InfoContext(ctx, "swap mined",
		slog.String("tx_hash", txHash.Hex()),
		slog.String("from", order.From.Symbol),
		slog.String("to", order.To.Symbol),
		slog.String("amount", order.Amount.String()),
	)
	return txHash.Hex(), nil
}

// ensureAllowance approves the router spender for the order amount when
// the current allowance is insufficient, and waits for the approval to
// mine before returning.
func (e *SwapExecutor) ensureAllowance(ctx context.Context, order domain.SwapOrder, spender string) error {
	allowance, err := e.wallet.Allowance(ctx, order.From.Address, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(order.Amount) >= 0 {
		return nil
	}

	e.logger.InfoContext(ctx, "approving router spender",
		slog.String("token", order.From.Symbol),
		slog.String("spender", spender),
		slog.String("amount", order.Amount.String()),
	)

	approveTx, err := e.router.ApproveTransaction(ctx, order.From.Address, order.Amount)
	if err != nil {
		return err
	}

	receipt, txHash, err := e.sendAndWait(ctx, approveTx)
	if err != nil {
		return fmt.Errorf("executor: approve %s: %w", order.From.Symbol, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("executor: approve tx %s reverted", txHash.Hex())
	}
	return nil
}

func (e *SwapExecutor) sendAndWait(ctx context.Context, tx *router.Transaction) (*types.Receipt, common.Hash, error) {
	to := common.HexToAddress(tx.To)
	data := common.FromHex(tx.Data)

	value := new(big.Int)
	if tx.Value != "" {
		if _, ok := value.SetString(tx.Value, 10); !ok {
			return nil, common.Hash{}, fmt.Errorf("invalid tx value %q", tx.Value)
		}
	}

	var gasPrice *big.Int
	if tx.GasPrice != "" {
		gasPrice = new(big.Int)
		if _, ok := gasPrice.SetString(tx.GasPrice, 10); !ok {
			return nil, common.Hash{}, fmt.Errorf("invalid gas price %q", tx.GasPrice)
		}
	}

	var gasLimit uint64
	if tx.Gas > 0 {
		gasLimit = uint64(tx.Gas)
	}

	txHash, err := e.wallet.SignAndSend(ctx, to, data, value, gasLimit, gasPrice)
	if err != nil {
		return nil, common.Hash{}, err
	}

	receipt, err := e.wallet.WaitMined(ctx, txHash)
	if err != nil {
		return nil, txHash, err
	}
	return receipt, txHash, nil
}

// Compile-time interface check.
var _ domain.SwapExecutor = (*SwapExecutor)(nil)
