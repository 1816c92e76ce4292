package arbitrage

import (
	"context"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/dex"
	bigmath "github.com/michaelpento.lv/deltabot/utils/math"
)

// priceScale is the fixed-point precision prices are read with
var priceScale = big.NewInt(1_000_000)

// nativeUSDScale is the scale of the market's native/USD price
const nativeUSDScale = 100_000

// PriceCalculator turns pool reserves and market state into a PriceSnapshot
type PriceCalculator struct {
	source dex.PriceSource
}

func NewPriceCalculator(source dex.PriceSource) *PriceCalculator {
	return &PriceCalculator{source: source}
}

// Snapshot reads both pools and the market state
func (c *PriceCalculator) Snapshot(ctx context.Context) (PriceSnapshot, error) {
	longMarket, shortMarket, err := c.MarketPrices(ctx)
	if err != nil {
		return PriceSnapshot{}, err
	}
	longFair, shortFair, nativeUSD, err := c.FairPrices(ctx)
	if err != nil {
		return PriceSnapshot{}, err
	}
	return NewPriceSnapshot(longMarket, shortMarket, nativeUSD, longFair, shortFair), nil
}

// MarketPrices returns the pool prices of LONG and SHORT in native units
func (c *PriceCalculator) MarketPrices(ctx context.Context) (long, short float64, err error) {
	longReserves, err := c.source.MarketReserves(ctx, dex.PairLongWrapped)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read %s reserves: %w", dex.PairLongWrapped, err)
	}
	shortReserves, err := c.source.MarketReserves(ctx, dex.PairWrappedShort)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read %s reserves: %w", dex.PairWrappedShort, err)
	}

	if long, err = ratio(longReserves.Wrapped, longReserves.Position); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", dex.PairLongWrapped, err)
	}
	if short, err = ratio(shortReserves.Wrapped, shortReserves.Position); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", dex.PairWrappedShort, err)
	}
	return long, short, nil
}

// FairPrices returns the fair values of LONG and SHORT and the USD price of native
func (c *PriceCalculator) FairPrices(ctx context.Context) (long, short, nativeUSD float64, err error) {
	state, err := c.source.FairValueState(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read market state: %w", err)
	}

	if long, err = positiveRatio(state.LongLiquidity, state.LongSupply); err != nil {
		return 0, 0, 0, fmt.Errorf("long fair price: %w", err)
	}
	if short, err = positiveRatio(state.ShortLiquidity, state.ShortSupply); err != nil {
		return 0, 0, 0, fmt.Errorf("short fair price: %w", err)
	}

	if state.Price == nil || state.Price.Sign() <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: native usd price %v", ErrInvalidPrice, state.Price)
	}
	nativeUSD = bigmath.ToFloat(state.Price) / nativeUSDScale
	return long, short, nativeUSD, nil
}

// ratio computes num/den truncated to six decimals
func ratio(num, den *big.Int) (float64, error) {
	v, ok := bigmath.FixedRatio(num, den, priceScale)
	if !ok {
		return 0, fmt.Errorf("%w: zero denominator", ErrInvalidPrice)
	}
	return v, nil
}

func positiveRatio(num, den *big.Int) (float64, error) {
	v, err := ratio(num, den)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: non-positive fair price", ErrInvalidPrice)
	}
	return v, nil
}
