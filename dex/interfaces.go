package dex

import (
	"context"
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/ethereum/go-ethereum/common"
)

// Pair identifies one of the two liquidity pools the strategy trades through
type Pair int

const (
	// PairLongWrapped is the LONG/wrapped-native pool
	PairLongWrapped Pair = iota
	// PairWrappedShort is the wrapped-native/SHORT pool
	PairWrappedShort
)

func (p Pair) String() string {
	switch p {
	case PairLongWrapped:
		return "LONG-WRAPPED"
	case PairWrappedShort:
		return "WRAPPED-SHORT"
	default:
		return "unknown"
	}
}

// PriceSource provides the raw inputs for market and fair prices
type PriceSource interface {
	// MarketReserves returns the reserves of a pool, normalized so that
	// Position holds the LONG/SHORT side and Wrapped the wrapped-native side.
	MarketReserves(ctx context.Context, pair Pair) (*Reserves, error)

	// FairValueState returns the position market's internal state
	FairValueState(ctx context.Context) (*MarketState, error)
}

// BalanceOracle reads wallet balances
type BalanceOracle interface {
	BalanceOf(ctx context.Context, asset types.Asset, owner common.Address) (*big.Int, error)
}

// SwapVenue exposes the swap router, the wrapped-native token and the
// position market as one capability.
type SwapVenue interface {
	// AssetAddress returns the token address of an asset. Native has none.
	AssetAddress(asset types.Asset) (common.Address, error)
	RouterAddress() common.Address
	MarketAddress() common.Address

	// QuoteAmountsOut returns [amountIn, ..., amountOut] along path
	QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)

	// SwapForExactOutput buys exactly amountOut spending at most amountInMax
	// and returns the executed amounts along path.
	SwapForExactOutput(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address, deadline *big.Int) ([]*big.Int, error)

	Allowance(ctx context.Context, asset types.Asset, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, asset types.Asset, spender common.Address, amount *big.Int) error

	WrapNative(ctx context.Context, amount *big.Int) error
	UnwrapNative(ctx context.Context, amount *big.Int) error
	BuyLong(ctx context.Context, amount *big.Int) error
	BuyShort(ctx context.Context, amount *big.Int) error
}

// Reserves represents pool reserves in subunits
type Reserves struct {
	Position *big.Int
	Wrapped  *big.Int
}

// MarketState is the position market state the fair prices are derived from
type MarketState struct {
	LongLiquidity  *big.Int
	LongSupply     *big.Int
	ShortLiquidity *big.Int
	ShortSupply    *big.Int
	// Price is the native/USD price scaled by 10^5
	Price *big.Int
}
