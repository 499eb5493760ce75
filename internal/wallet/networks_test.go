package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCURLForChain(t *testing.T) {
	url, err := RPCURLForChain(137)
	require.NoError(t, err)
	assert.Equal(t, "https://polygon-rpc.com", url)

	_, err = RPCURLForChain(4242)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet.rpc_url")
}
