package testutils

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// NewKey generates a wallet key and returns it hex encoded with its address
func NewKey(t *testing.T) (string, common.Address) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key)), crypto.PubkeyToAddress(key.PublicKey)
}

// CreateMockTransaction creates a signed legacy transfer for tests that only
// need a hash
func CreateMockTransaction(t *testing.T) *types.Transaction {
	privateKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	tx := types.NewTransaction(
		0,
		common.HexToAddress("0x1234567890123456789012345678901234567890"),
		big.NewInt(0),
		21000,
		big.NewInt(1),
		nil,
	)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(1)), privateKey)
	require.NoError(t, err)
	return signedTx
}

// MethodByID finds the method of parsed whose selector starts data
func MethodByID(parsed abi.ABI, data []byte) (*abi.Method, bool) {
	if len(data) < 4 {
		return nil, false
	}
	for _, m := range parsed.Methods {
		if bytes.Equal(m.ID, data[:4]) {
			method := m
			return &method, true
		}
	}
	return nil, false
}
