package arbitrage

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/michaelpento.lv/deltabot/types"
	"github.com/michaelpento.lv/deltabot/utils/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixedSnapshot struct {
	snap  PriceSnapshot
	err   error
	calls int
}

func (f *fixedSnapshot) Snapshot(ctx context.Context) (PriceSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

type fakeQuoter struct {
	staticResolver
	amounts []*big.Int
	err     error
	path    []common.Address
	in      *big.Int
}

func (f *fakeQuoter) QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	f.in, f.path = amountIn, path
	return f.amounts, f.err
}

// healthyBalances keeps ManageAssetLevels and EnsureFunds from acting
func healthyBalances() *mockBalances {
	balances := &mockBalances{}
	balances.On("NativeBalance").Return(types.Units(5000), nil)
	balances.On("WrappedBalance").Return(types.Units(5000), nil)
	balances.On("LongBalance").Return(types.Units(5000), nil)
	balances.On("ShortBalance").Return(types.Units(5000), nil)
	return balances
}

type engineFixture struct {
	engine   *Engine
	prices   *fixedSnapshot
	quoter   *fakeQuoter
	balances *mockBalances
	tokens   *mockTokens
	metrics  *metrics.StrategyMetrics
}

func newEngineFixture(t *testing.T, snap PriceSnapshot, quote []*big.Int, dryRun bool) *engineFixture {
	f := &engineFixture{
		prices:   &fixedSnapshot{snap: snap},
		quoter:   &fakeQuoter{amounts: quote},
		balances: healthyBalances(),
		tokens:   &mockTokens{},
		metrics:  metrics.NewStrategyMetrics(prometheus.NewRegistry(), "test"),
	}
	logger := zaptest.NewLogger(t)
	assets := NewAssetManager(f.balances, f.tokens, f.quoter, DefaultParams(), f.metrics, logger)
	cfg := DefaultEngineConfig()
	cfg.DryRun = dryRun
	f.engine = NewEngine(f.prices, assets, f.quoter, recipient, cfg, f.metrics, logger)
	return f
}

// LONG 10% over fair; one USD buys 200 LONG worth 20 native
var longOverSnapshot = NewPriceSnapshot(0.11, 0.05, 0.05, 0.1, 0.05)

func TestRunCycleExecutes(t *testing.T) {
	quote := []*big.Int{types.Units(200), types.Units(30)}
	f := newEngineFixture(t, longOverSnapshot, quote, false)
	f.tokens.On("Swap",
		amount(types.Units(30)),
		amount(types.Units(200)),
		legsOf(types.AssetLong, types.AssetWrapped),
		recipient,
	).Return([]*big.Int{types.Units(190), types.Units(30)}, nil).Once()

	result, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	f.tokens.AssertExpectations(t)

	assert.Equal(t, LongNative, result.Route)
	assert.Equal(t, OutcomeExecuted, result.Outcome)
	assert.Equal(t, types.Units(200), f.quoter.in)
	assert.Equal(t, legsOf(types.AssetLong, types.AssetWrapped), f.quoter.path)
	assert.InDelta(t, 30-20-7.0, result.EstimatedGain, 1e-9)
	assert.InDelta(t, 30-19-7.0, result.RealizedGain, 1e-9)
	assert.NotEmpty(t, result.ID)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Swaps))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CycleOutcomes.WithLabelValues("executed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Routes.WithLabelValues("LongNative")))
	assert.Equal(t, float64(5000), testutil.ToFloat64(f.metrics.Balance.WithLabelValues("long")))
}

func TestRunCycleStopsEarly(t *testing.T) {
	tests := []struct {
		name    string
		snap    PriceSnapshot
		quote   []*big.Int
		dryRun  bool
		outcome Outcome
	}{
		{"NoRoute", NewPriceSnapshot(0.1, 0.05, 0.05, 0.1, 0.05), nil, false, OutcomeNoRoute},
		{"EmptyQuote", longOverSnapshot, []*big.Int{}, false, OutcomeMalformedQuote},
		{"SingleAmountQuote", longOverSnapshot, []*big.Int{types.Units(200)}, false, OutcomeMalformedQuote},
		{"BelowMinGain", longOverSnapshot, []*big.Int{types.Units(200), types.Units(27)}, false, OutcomeBelowMinGain},
		{"DryRun", longOverSnapshot, []*big.Int{types.Units(200), types.Units(30)}, true, OutcomeDryRun},
		{"ZeroAmount", NewPriceSnapshot(0.11, 0.05, 20, 0.1, 0.05), nil, false, OutcomeZeroAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, tt.snap, tt.quote, tt.dryRun)

			result, err := f.engine.RunCycle(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome)
			f.tokens.AssertNotCalled(t, "Swap", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CycleOutcomes.WithLabelValues(tt.outcome.String())))
		})
	}
}

func TestRunCycleMalformedSwapResult(t *testing.T) {
	f := newEngineFixture(t, longOverSnapshot, []*big.Int{types.Units(200), types.Units(30)}, false)
	f.tokens.On("Swap", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*big.Int{types.Units(30)}, nil).Once()

	result, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeMalformedSwap, result.Outcome)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.Swaps))
}

func TestRunCycleErrors(t *testing.T) {
	t.Run("PriceError", func(t *testing.T) {
		f := newEngineFixture(t, longOverSnapshot, nil, false)
		f.prices.err = ErrInvalidPrice

		_, err := f.engine.RunCycle(context.Background())
		assert.ErrorIs(t, err, ErrInvalidPrice)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CycleErrors.WithLabelValues("invalid_price")))
	})

	t.Run("QuoteError", func(t *testing.T) {
		f := newEngineFixture(t, longOverSnapshot, nil, false)
		quoteErr := errors.New("execution reverted")
		f.quoter.err = quoteErr

		_, err := f.engine.RunCycle(context.Background())
		assert.ErrorIs(t, err, quoteErr)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CycleErrors.WithLabelValues("capability")))
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		f := newEngineFixture(t, longOverSnapshot, []*big.Int{types.Units(200), types.Units(30)}, false)
		f.balances = &mockBalances{}
		f.balances.On("NativeBalance").Return(types.Units(150), nil)
		f.balances.On("WrappedBalance").Return(types.Units(1600), nil)
		f.balances.On("LongBalance").Return(big.NewInt(0), nil)
		assets := NewAssetManager(f.balances, f.tokens, f.quoter, DefaultParams(), f.metrics, zaptest.NewLogger(t))
		f.engine = NewEngine(f.prices, assets, f.quoter, recipient, DefaultEngineConfig(), f.metrics, zaptest.NewLogger(t))

		_, err := f.engine.RunCycle(context.Background())
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		f.tokens.AssertNotCalled(t, "Swap", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleEvent(t *testing.T) {
	f := newEngineFixture(t, NewPriceSnapshot(0.1, 0.05, 0.05, 0.1, 0.05), nil, false)
	ctx := context.Background()

	for _, ev := range []Event{TimerTick(), TradeExecuted("LONG-WRAPPED"), PriceChanged("LONG")} {
		more, err := f.engine.HandleEvent(ctx, ev)
		require.NoError(t, err)
		assert.True(t, more)
	}
	assert.Equal(t, 3, f.prices.calls)

	more, err := f.engine.HandleEvent(ctx, Shutdown())
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, 3, f.prices.calls)
}

func TestRunContinuesAfterErrors(t *testing.T) {
	f := newEngineFixture(t, longOverSnapshot, nil, false)
	f.prices.err = errors.New("node down")

	events := make(chan Event, 4)
	events <- TimerTick()
	events <- TimerTick()
	events <- Shutdown()
	events <- TimerTick()

	require.NoError(t, f.engine.Run(context.Background(), NewChanSource(events)))
	assert.Equal(t, 2, f.prices.calls)
	assert.Len(t, events, 1)
}

func TestRunStopsOnClosedSource(t *testing.T) {
	f := newEngineFixture(t, NewPriceSnapshot(0.1, 0.05, 0.05, 0.1, 0.05), nil, false)

	events := make(chan Event, 1)
	events <- PriceChanged("SHORT")
	close(events)

	require.NoError(t, f.engine.Run(context.Background(), NewChanSource(events)))
	assert.Equal(t, 1, f.prices.calls)
}
