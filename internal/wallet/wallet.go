// Package wallet wraps go-ethereum's RPC client with the small surface the
// trading loop needs: ERC-20 balance and allowance reads, transaction
// signing and broadcast, and receipt polling.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/avelkov/swingbot/internal/domain"
)

// ERC-20 function selectors: balanceOf(address), allowance(address,address).
var (
	selectorBalanceOf = common.Hex2Bytes("70a08231")
	selectorAllowance = common.Hex2Bytes("dd62ed3e")
)

// defaultReceiptInterval is the fixed sub-interval at which a pending
// transaction's receipt is polled. Polling continues until the context is
// cancelled; confirmation has no deadline of its own.
const defaultReceiptInterval = 5 * time.Second

// Config holds wallet construction parameters.
type Config struct {
	PrivateKey string // hex-encoded secp256k1 key; empty means watch-only
	Address    string // used only when PrivateKey is empty
	ChainID    int
	RPCURL     string // overrides the built-in endpoint for the chain
}

// Wallet is a signing (or watch-only) wallet bound to one chain.
type Wallet struct {
	client          *ethclient.Client
	key             *ecdsa.PrivateKey // nil in watch-only mode
	address         common.Address
	chainID         *big.Int
	receiptInterval time.Duration
}

// New dials the chain RPC endpoint and constructs the wallet. With a
// private key the address is derived from it; otherwise cfg.Address is
// used and signing operations fail.
func New(ctx context.Context, cfg Config) (*Wallet, error) {
	rpcURL := cfg.RPCURL
	if rpcURL == "" {
		var err error
		rpcURL, err = RPCURLForChain(cfg.ChainID)
		if err != nil {
			return nil, err
		}
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("wallet: dial %s: %w", rpcURL, err)
	}

	w := &Wallet{
		client:          client,
		chainID:         big.NewInt(int64(cfg.ChainID)),
		receiptInterval: defaultReceiptInterval,
	}

	if keyHex := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"); keyHex != "" {
		key, err := ethcrypto.HexToECDSA(keyHex)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("wallet: invalid private key: %w", err)
		}
		w.key = key
		w.address = ethcrypto.PubkeyToAddress(key.PublicKey)
	} else {
		if !common.IsHexAddress(cfg.Address) {
			client.Close()
			return nil, fmt.Errorf("wallet: invalid watch address %q", cfg.Address)
		}
		w.address = common.HexToAddress(cfg.Address)
	}

	return w, nil
}

// Address returns the wallet address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Close releases the RPC connection.
func (w *Wallet) Close() {
	w.client.Close()
}

// TokenBalance returns the wallet's balance of the ERC-20 token at
// tokenAddress, in base units.
func (w *Wallet) TokenBalance(ctx context.Context, tokenAddress string) (*big.Int, error) {
	data := append(append([]byte{}, selectorBalanceOf...), common.LeftPadBytes(w.address.Bytes(), 32)...)
	return w.callUint256(ctx, tokenAddress, data, "balanceOf")
}

// Allowance returns how much of the token at tokenAddress the spender may
// transfer on the wallet's behalf.
func (w *Wallet) Allowance(ctx context.Context, tokenAddress, spender string) (*big.Int, error) {
	data := append(append([]byte{}, selectorAllowance...), common.LeftPadBytes(w.address.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(spender).Bytes(), 32)...)
	return w.callUint256(ctx, tokenAddress, data, "allowance")
}

func (w *Wallet) callUint256(ctx context.Context, tokenAddress string, data []byte, what string) (*big.Int, error) {
	contract := common.HexToAddress(tokenAddress)
	out, err := w.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("wallet: call %s on %s: %w", what, tokenAddress, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("wallet: empty %s result from %s", what, tokenAddress)
	}
	return new(big.Int).SetBytes(out), nil
}

// SignAndSend signs a legacy transaction with the wallet key and
// broadcasts it. A zero gasLimit triggers estimation; a nil gasPrice uses
// the node's suggestion.
func (w *Wallet) SignAndSend(ctx context.Context, to common.Address, data []byte, value *big.Int, gasLimit uint64, gasPrice *big.Int) (common.Hash, error) {
	if w.key == nil {
		return common.Hash{}, errors.New("wallet: watch-only, cannot sign")
	}
	if value == nil {
		value = big.NewInt(0)
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: pending nonce: %w", err)
	}

	if gasPrice == nil || gasPrice.Sign() == 0 {
		gasPrice, err = w.client.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("wallet: suggest gas price: %w", err)
		}
	}

	if gasLimit == 0 {
		gasLimit, err = w.client.EstimateGas(ctx, ethereum.CallMsg{
			From:     w.address,
			To:       &to,
			Value:    value,
			GasPrice: gasPrice,
			Data:     data,
		})
		if err != nil {
			return common.Hash{}, fmt.Errorf("wallet: estimate gas: %w", err)
		}
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: sign tx: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("wallet: send tx: %w", err)
	}
	return signed.Hash(), nil
}

// WaitMined polls for the transaction receipt at a fixed interval until
// it appears or the context is cancelled. It returns ErrSwapReverted
// semantics to the caller via the receipt status; this method only
// reports mining.
func (w *Wallet) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("wallet: receipt %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Compile-time interface check.
var _ domain.BalanceReader = (*Wallet)(nil)
