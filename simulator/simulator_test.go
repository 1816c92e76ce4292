package simulator

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDryRunSideEffects(t *testing.T) {
	manager := NewDryRunTokenManager(zaptest.NewLogger(t))
	ctx := context.Background()
	amount := big.NewInt(1_500_000_000_000)

	assert.NoError(t, manager.ApproveMarkets(ctx))
	assert.NoError(t, manager.WrapNative(ctx, amount))
	assert.NoError(t, manager.UnwrapNative(ctx, amount))
	assert.NoError(t, manager.BuyLong(ctx, amount))
	assert.NoError(t, manager.BuyShort(ctx, amount))
}

func TestDryRunSwapEchoesLimits(t *testing.T) {
	manager := NewDryRunTokenManager(zaptest.NewLogger(t))
	amountOut := big.NewInt(1_500_000_000_000)
	amountInMax := big.NewInt(3_150_000_000)

	amounts, err := manager.Swap(context.Background(), amountOut, amountInMax, []common.Address{{1}, {2}}, common.Address{})
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	assert.Equal(t, amountInMax, amounts[0])
	assert.Equal(t, amountOut, amounts[1])

	// returned amounts are copies
	amounts[0].SetInt64(0)
	assert.Equal(t, big.NewInt(3_150_000_000), amountInMax)
}
