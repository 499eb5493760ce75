package router

import (
	"fmt"
	"math/big"
	"strings"
)

// tokenInfo is one entry of the router's token list or a quote leg.
type tokenInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

type tokensResponse struct {
	Tokens map[string]tokenInfo `json:"tokens"`
}

type spenderResponse struct {
	Address string `json:"address"`
}

type quoteResponse struct {
	FromToken     tokenInfo `json:"fromToken"`
	ToToken       tokenInfo `json:"toToken"`
	ToTokenAmount string    `json:"toTokenAmount"`
	EstimatedGas  int64     `json:"estimatedGas"`
}

func (q *quoteResponse) validate() error {
	if q.ToTokenAmount == "" {
		return fmt.Errorf("quote missing toTokenAmount")
	}
	if q.FromToken.Decimals <= 0 || q.ToToken.Decimals <= 0 {
		return fmt.Errorf("quote missing token decimals")
	}
	if q.ToToken.Symbol == "" {
		return fmt.Errorf("quote missing toToken symbol")
	}
	return nil
}

// Transaction is the raw calldata payload the router returns for approve
// and swap operations, ready for signing and broadcast.
type Transaction struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      int64  `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

func (t *Transaction) validate() error {
	if t.To == "" {
		return fmt.Errorf("transaction missing to address")
	}
	if strings.TrimPrefix(t.Data, "0x") == "" {
		return fmt.Errorf("transaction missing calldata")
	}
	return nil
}

type approveTxResponse struct {
	Data     string `json:"data"`
	To       string `json:"to"`
	Value    string `json:"value"`
	GasPrice string `json:"gasPrice"`
}

type swapResponse struct {
	ToTokenAmount string      `json:"toTokenAmount"`
	Tx            Transaction `json:"tx"`
}

// parseAmount converts a decimal-string amount to a big.Int.
func parseAmount(s, what string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("router: invalid %s amount %q", what, s)
	}
	return n, nil
}
