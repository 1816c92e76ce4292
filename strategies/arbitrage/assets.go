package arbitrage

import (
	"context"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"
	"github.com/michaelpento.lv/deltabot/utils"
	bigmath "github.com/michaelpento.lv/deltabot/utils/math"
	"github.com/michaelpento.lv/deltabot/utils/metrics"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Balances reads the wallet balances the strategy manages
type Balances interface {
	NativeBalance(ctx context.Context) (*big.Int, error)
	WrappedBalance(ctx context.Context) (*big.Int, error)
	LongBalance(ctx context.Context) (*big.Int, error)
	ShortBalance(ctx context.Context) (*big.Int, error)
}

// TokenManager performs the side effects that move value between assets
type TokenManager interface {
	ApproveMarkets(ctx context.Context) error
	WrapNative(ctx context.Context, amount *big.Int) error
	UnwrapNative(ctx context.Context, amount *big.Int) error
	BuyLong(ctx context.Context, amount *big.Int) error
	BuyShort(ctx context.Context, amount *big.Int) error
	// Swap buys exactly amountOut along path spending at most amountInMax
	// and returns the executed amounts.
	Swap(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address) ([]*big.Int, error)
}

// Params are the balance levels the asset manager keeps, in subunits
type Params struct {
	// TopUpAmount is wrapped or spent on positions per top-up
	TopUpAmount       *big.Int
	MinNativeBalance  *big.Int
	MinWrappedBalance *big.Int
	// UnwrapAmount is unwrapped when native runs low and bought back when wrapped runs low
	UnwrapAmount *big.Int
	// SlippageBuffer scales the input bound when selling positions for wrapped native
	SlippageBuffer float64
}

func DefaultParams() Params {
	return Params{
		TopUpAmount:       types.Units(2000),
		MinNativeBalance:  types.Units(100),
		MinWrappedBalance: types.Units(1500),
		UnwrapAmount:      types.Units(1500),
		SlippageBuffer:    1.05,
	}
}

// AssetManager makes sure the wallet can fund a route and keeps native and
// wrapped native above their minimum levels.
type AssetManager struct {
	balances Balances
	tokens   TokenManager
	resolver AssetResolver
	params   Params
	metrics  *metrics.StrategyMetrics
	logger   *zap.Logger
}

func NewAssetManager(balances Balances, tokens TokenManager, resolver AssetResolver, params Params, m *metrics.StrategyMetrics, logger *zap.Logger) *AssetManager {
	return &AssetManager{
		balances: balances,
		tokens:   tokens,
		resolver: resolver,
		params:   params,
		metrics:  m,
		logger:   logger.Named("assets"),
	}
}

// EnsureFunds tops up the route's input asset when its balance is below
// required. One top-up of TopUpAmount is attempted, which may still leave
// the balance short of required. It panics on Empty.
func (a *AssetManager) EnsureFunds(ctx context.Context, route Route, required *big.Int) error {
	var err error
	switch route {
	case LongNativeShort, LongNative:
		err = a.topUpPosition(ctx, types.AssetLong, required)
	case ShortNativeLong, ShortNative:
		err = a.topUpPosition(ctx, types.AssetShort, required)
	case NativeLong, NativeShort:
		err = a.topUpWrapped(ctx, required)
	default:
		panic(fmt.Sprintf("cannot fund route %s", route))
	}
	if err != nil {
		return err
	}

	a.logger.Info("Funds for swap ready", zap.String("route", route.String()))
	return nil
}

// Swap funds the route and swaps for exactly amountOut spending at most amountIn.
// It panics on Empty.
func (a *AssetManager) Swap(ctx context.Context, route Route, amountIn, amountOut *big.Int, recipient common.Address) ([]*big.Int, error) {
	if route == Empty {
		panic("cannot swap along an empty route")
	}

	if err := a.EnsureFunds(ctx, route, amountIn); err != nil {
		return nil, err
	}

	legs, err := route.Legs(a.resolver)
	if err != nil {
		return nil, err
	}
	return a.tokens.Swap(ctx, amountOut, amountIn, legs, recipient)
}

// ManageAssetLevels unwraps when native runs low. Otherwise, when wrapped
// native runs low, it sells the position worth more at fair value for
// UnwrapAmount of wrapped native. At most one action is taken per call.
func (a *AssetManager) ManageAssetLevels(ctx context.Context, s PriceSnapshot, recipient common.Address) error {
	native, err := a.balances.NativeBalance(ctx)
	if err != nil {
		return err
	}
	if native.Cmp(a.params.MinNativeBalance) < 0 {
		a.logger.Warn("Native balance low, unwrapping",
			zap.String("balance", utils.Humanize(native)),
			zap.String("amount", utils.Humanize(a.params.UnwrapAmount)))
		a.metrics.TopUp("unwrap")
		return a.tokens.UnwrapNative(ctx, a.params.UnwrapAmount)
	}

	wrapped, err := a.balances.WrappedBalance(ctx)
	if err != nil {
		return err
	}
	if wrapped.Cmp(a.params.MinWrappedBalance) >= 0 {
		return nil
	}

	a.logger.Warn("Wrapped balance low, selling positions",
		zap.String("balance", utils.Humanize(wrapped)))

	long, err := a.balances.LongBalance(ctx)
	if err != nil {
		return err
	}
	short, err := a.balances.ShortBalance(ctx)
	if err != nil {
		return err
	}

	route, fair := LongNative, s.LongFair
	if bigmath.ToFloat(long)*s.LongFair < bigmath.ToFloat(short)*s.ShortFair {
		route, fair = ShortNative, s.ShortFair
	}

	amountInMax := a.sellBound(fair)
	a.logger.Info("Selling positions for wrapped native",
		zap.String("route", route.String()),
		zap.String("amount_in_max", utils.Humanize(amountInMax)),
		zap.String("amount_out", utils.Humanize(a.params.UnwrapAmount)))

	legs, err := route.Legs(a.resolver)
	if err != nil {
		return err
	}
	if route == LongNative {
		a.metrics.TopUp("sell_long")
	} else {
		a.metrics.TopUp("sell_short")
	}
	_, err = a.tokens.Swap(ctx, a.params.UnwrapAmount, amountInMax, legs, recipient)
	return err
}

// sellBound is how many position subunits may be spent to receive
// UnwrapAmount of wrapped native at fair price plus the slippage buffer.
func (a *AssetManager) sellBound(fair float64) *big.Int {
	return bigmath.Round(bigmath.ToFloat(a.params.UnwrapAmount) / fair * a.params.SlippageBuffer)
}

// ReadBalances reads all four balances
func (a *AssetManager) ReadBalances(ctx context.Context) (types.Balances, error) {
	var b types.Balances
	var err error
	if b.Native, err = a.balances.NativeBalance(ctx); err != nil {
		return b, err
	}
	if b.Wrapped, err = a.balances.WrappedBalance(ctx); err != nil {
		return b, err
	}
	if b.Long, err = a.balances.LongBalance(ctx); err != nil {
		return b, err
	}
	if b.Short, err = a.balances.ShortBalance(ctx); err != nil {
		return b, err
	}
	return b, nil
}

// PrintBalances logs all four balances and publishes them as gauges
func (a *AssetManager) PrintBalances(ctx context.Context) error {
	b, err := a.ReadBalances(ctx)
	if err != nil {
		return err
	}

	fields := make([]zap.Field, 0, 4)
	for _, asset := range []types.Asset{types.AssetNative, types.AssetWrapped, types.AssetLong, types.AssetShort} {
		balance := b.Get(asset)
		units, _ := utils.ToUnits(balance).Float64()
		a.metrics.SetBalance(asset.String(), units)
		fields = append(fields, zap.String(asset.String(), utils.Humanize(balance)))
	}
	a.logger.Info("Balances", fields...)
	return nil
}

func (a *AssetManager) topUpPosition(ctx context.Context, asset types.Asset, required *big.Int) error {
	var balance *big.Int
	var err error
	if asset == types.AssetLong {
		balance, err = a.balances.LongBalance(ctx)
	} else {
		balance, err = a.balances.ShortBalance(ctx)
	}
	if err != nil {
		return err
	}

	a.logger.Info("Checking position balance",
		zap.String("asset", asset.String()),
		zap.String("balance", utils.Humanize(balance)),
		zap.String("required", utils.Humanize(required)))
	if balance.Cmp(required) >= 0 {
		return nil
	}

	a.logger.Warn("Position balance short, topping up", zap.String("asset", asset.String()))
	wrapped, err := a.balances.WrappedBalance(ctx)
	if err != nil {
		return err
	}
	if wrapped.Cmp(a.params.TopUpAmount) < 0 {
		if err := a.wrap(ctx); err != nil {
			return err
		}
	}

	if asset == types.AssetLong {
		a.metrics.TopUp("buy_long")
		return a.tokens.BuyLong(ctx, a.params.TopUpAmount)
	}
	a.metrics.TopUp("buy_short")
	return a.tokens.BuyShort(ctx, a.params.TopUpAmount)
}

func (a *AssetManager) topUpWrapped(ctx context.Context, required *big.Int) error {
	wrapped, err := a.balances.WrappedBalance(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("Checking wrapped balance",
		zap.String("balance", utils.Humanize(wrapped)),
		zap.String("required", utils.Humanize(required)))
	if wrapped.Cmp(required) >= 0 {
		return nil
	}

	a.logger.Warn("Wrapped balance short, topping up")
	return a.wrap(ctx)
}

// wrap converts TopUpAmount of native, failing when native cannot cover it
func (a *AssetManager) wrap(ctx context.Context) error {
	native, err := a.balances.NativeBalance(ctx)
	if err != nil {
		return err
	}
	if native.Cmp(a.params.TopUpAmount) < 0 {
		return fmt.Errorf("%w: native balance %s below top-up %s",
			ErrInsufficientFunds, utils.Humanize(native), utils.Humanize(a.params.TopUpAmount))
	}

	a.metrics.TopUp("wrap")
	return a.tokens.WrapNative(ctx, a.params.TopUpAmount)
}
