package wallet

import "fmt"

// Public RPC endpoints per chain id. Operators override these with
// wallet.rpc_url when they run their own node.
var rpcURLs = map[int]string{
	1:   "https://cloudflare-eth.com",
	56:  "https://bsc-dataseed.binance.org",
	137: "https://polygon-rpc.com",
}

// RPCURLForChain returns the default RPC endpoint for a chain id.
func RPCURLForChain(chainID int) (string, error) {
	url, ok := rpcURLs[chainID]
	if !ok {
		return "", fmt.Errorf("wallet: no default RPC endpoint for chain %d, set wallet.rpc_url", chainID)
	}
	return url, nil
}
