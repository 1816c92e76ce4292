package arbitrage

import (
	"context"
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type mockBalances struct {
	mock.Mock
}

func (m *mockBalances) balance(method string) (*big.Int, error) {
	args := m.MethodCalled(method)
	var v *big.Int
	if b := args.Get(0); b != nil {
		v = b.(*big.Int)
	}
	return v, args.Error(1)
}

func (m *mockBalances) NativeBalance(ctx context.Context) (*big.Int, error) {
	return m.balance("NativeBalance")
}

func (m *mockBalances) WrappedBalance(ctx context.Context) (*big.Int, error) {
	return m.balance("WrappedBalance")
}

func (m *mockBalances) LongBalance(ctx context.Context) (*big.Int, error) {
	return m.balance("LongBalance")
}

func (m *mockBalances) ShortBalance(ctx context.Context) (*big.Int, error) {
	return m.balance("ShortBalance")
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) ApproveMarkets(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockTokens) WrapNative(ctx context.Context, amount *big.Int) error {
	return m.Called(amount).Error(0)
}

func (m *mockTokens) UnwrapNative(ctx context.Context, amount *big.Int) error {
	return m.Called(amount).Error(0)
}

func (m *mockTokens) BuyLong(ctx context.Context, amount *big.Int) error {
	return m.Called(amount).Error(0)
}

func (m *mockTokens) BuyShort(ctx context.Context, amount *big.Int) error {
	return m.Called(amount).Error(0)
}

func (m *mockTokens) Swap(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address) ([]*big.Int, error) {
	args := m.Called(amountOut, amountInMax, path, recipient)
	var amounts []*big.Int
	if v := args.Get(0); v != nil {
		amounts = v.([]*big.Int)
	}
	return amounts, args.Error(1)
}

// amount matches a *big.Int argument by value
func amount(want *big.Int) interface{} {
	return mock.MatchedBy(func(got *big.Int) bool {
		return got != nil && got.Cmp(want) == 0
	})
}

// staticResolver gives every asset a fixed address
type staticResolver struct{}

func (staticResolver) AssetAddress(asset types.Asset) (common.Address, error) {
	return assetAddress(asset), nil
}

func assetAddress(asset types.Asset) common.Address {
	return common.BigToAddress(big.NewInt(int64(asset) + 0x100))
}

func legsOf(assets ...types.Asset) []common.Address {
	legs := make([]common.Address, len(assets))
	for i, a := range assets {
		legs[i] = assetAddress(a)
	}
	return legs
}
