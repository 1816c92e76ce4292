package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/michaelpento.lv/deltabot/utils"
	"github.com/michaelpento.lv/deltabot/utils/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quoter resolves route legs and quotes swaps along them
type Quoter interface {
	AssetResolver
	QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
}

// SnapshotSource produces the prices of one cycle
type SnapshotSource interface {
	Snapshot(ctx context.Context) (PriceSnapshot, error)
}

// EngineConfig holds the decision parameters of the engine
type EngineConfig struct {
	DiffThreshold float64
	MinGain       float64
	DryRun        bool
	Gain          GainEstimator
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DiffThreshold: DefaultDiffThreshold,
		MinGain:       1.0,
		Gain:          DefaultGainEstimator(),
	}
}

// Outcome is how a cycle that did not fail ended
type Outcome int

const (
	OutcomeNoRoute Outcome = iota
	OutcomeZeroAmount
	OutcomeMalformedQuote
	OutcomeBelowMinGain
	OutcomeDryRun
	OutcomeExecuted
	OutcomeMalformedSwap
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoRoute:
		return "no_route"
	case OutcomeZeroAmount:
		return "zero_amount"
	case OutcomeMalformedQuote:
		return "malformed_quote"
	case OutcomeBelowMinGain:
		return "below_min_gain"
	case OutcomeDryRun:
		return "dry_run"
	case OutcomeExecuted:
		return "executed"
	case OutcomeMalformedSwap:
		return "malformed_swap"
	default:
		return "unknown"
	}
}

// CycleResult describes one cycle. Amounts and gains are set once the
// cycle got far enough to compute them.
type CycleResult struct {
	ID            string
	Snapshot      PriceSnapshot
	Route         Route
	Outcome       Outcome
	AmountIn      *big.Int
	AmountOut     *big.Int
	EstimatedGain float64
	RealizedGain  float64
}

// Engine runs the price check and trade cycle, one at a time
type Engine struct {
	prices    SnapshotSource
	assets    *AssetManager
	quoter    Quoter
	recipient common.Address
	cfg       EngineConfig
	metrics   *metrics.StrategyMetrics
	logger    *zap.Logger
}

func NewEngine(prices SnapshotSource, assets *AssetManager, quoter Quoter, recipient common.Address, cfg EngineConfig, m *metrics.StrategyMetrics, logger *zap.Logger) *Engine {
	return &Engine{
		prices:    prices,
		assets:    assets,
		quoter:    quoter,
		recipient: recipient,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.Named("engine"),
	}
}

// Run handles events from source until it yields Shutdown. Cycle errors are
// logged and the loop waits for the next event.
func (e *Engine) Run(ctx context.Context, source EventSource) error {
	e.logger.Info("Engine started",
		zap.Bool("dry_run", e.cfg.DryRun),
		zap.Float64("threshold", e.cfg.DiffThreshold),
		zap.Float64("min_gain", e.cfg.MinGain))

	for {
		ev := source.Next(ctx)
		more, err := e.HandleEvent(ctx, ev)
		if err != nil {
			e.logger.Error("Cycle failed", zap.String("event", ev.Kind.String()), zap.Error(err))
		}
		if !more {
			e.logger.Info("Engine stopped")
			return nil
		}
	}
}

// HandleEvent runs a cycle for every event except Shutdown. It reports
// whether the engine should keep going.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) (bool, error) {
	switch ev.Kind {
	case KindTimerTick, KindTradeExecuted, KindPriceChanged:
		_, err := e.RunCycle(ctx)
		return true, err
	case KindShutdown:
		e.logger.Info("Shutdown event received")
		return false, nil
	default:
		return true, fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

// RunCycle fetches prices, rebalances, and trades the selected route when
// the estimated gain clears MinGain.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	start := time.Now()
	result := &CycleResult{ID: uuid.NewString(), Route: Empty}
	logger := e.logger.With(zap.String("cycle", result.ID))

	e.metrics.CycleStarted()
	err := e.runCycle(ctx, result, logger)
	if err != nil {
		e.metrics.CycleFailed(errorKind(err), time.Since(start))
		return result, err
	}

	e.metrics.CycleFinished(result.Outcome.String(), time.Since(start))
	logger.Info("Cycle finished",
		zap.String("outcome", result.Outcome.String()),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (e *Engine) runCycle(ctx context.Context, result *CycleResult, logger *zap.Logger) error {
	snap, err := e.prices.Snapshot(ctx)
	if err != nil {
		return err
	}
	result.Snapshot = snap
	logger.Info("Prices", snap.Fields()...)

	if err := e.assets.ManageAssetLevels(ctx, snap, e.recipient); err != nil {
		return fmt.Errorf("failed to manage asset levels: %w", err)
	}

	route := SelectRoute(snap, e.cfg.DiffThreshold)
	result.Route = route
	e.metrics.RouteSelected(route.String())
	logger.Info("Route selected", zap.String("route", route.String()))
	if route == Empty {
		result.Outcome = OutcomeNoRoute
		return nil
	}

	amountIn := snap.AmountPerOneUSD(route)
	if amountIn.Sign() == 0 {
		logger.Info("One USD of input rounds to zero units")
		result.Outcome = OutcomeZeroAmount
		return nil
	}

	legs, err := route.Legs(e.quoter)
	if err != nil {
		return err
	}
	amounts, err := e.quoter.QuoteAmountsOut(ctx, amountIn, legs)
	if err != nil {
		return fmt.Errorf("failed to quote %s: %w", route, err)
	}
	if len(amounts) < 2 {
		logger.Warn("No valid swap amounts", zap.Error(ErrMalformedVenueResponse), zap.Int("amounts", len(amounts)))
		result.Outcome = OutcomeMalformedQuote
		return nil
	}

	result.AmountIn, result.AmountOut = amounts[0], amounts[len(amounts)-1]
	result.EstimatedGain = e.cfg.Gain.Estimate(result.AmountIn, result.AmountOut, snap, route)
	e.metrics.GainEstimated(result.EstimatedGain)
	logger.Info("Gain estimated",
		zap.String("amount_in", utils.Humanize(result.AmountIn)),
		zap.String("amount_out", utils.Humanize(result.AmountOut)),
		zap.Float64("gain", result.EstimatedGain))

	if result.EstimatedGain < e.cfg.MinGain {
		result.Outcome = OutcomeBelowMinGain
		return nil
	}
	if e.cfg.DryRun {
		logger.Info("Dry run, not executing", zap.String("route", route.String()))
		result.Outcome = OutcomeDryRun
		return nil
	}

	executed, err := e.assets.Swap(ctx, route, result.AmountIn, result.AmountOut, e.recipient)
	if err != nil {
		return err
	}
	logger.Info("Arbitrage swap completed", zap.String("route", route.String()))
	if err := e.assets.PrintBalances(ctx); err != nil {
		logger.Warn("Failed to read balances", zap.Error(err))
	}

	if len(executed) < 2 {
		logger.Warn("Invalid swap result", zap.Error(ErrMalformedVenueResponse), zap.Int("amounts", len(executed)))
		result.Outcome = OutcomeMalformedSwap
		return nil
	}

	result.RealizedGain = e.cfg.Gain.Estimate(executed[0], executed[len(executed)-1], snap, route)
	e.metrics.SwapExecuted(result.RealizedGain)
	logger.Info("Realized gain", zap.Float64("gain", result.RealizedGain))
	result.Outcome = OutcomeExecuted
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "capability"
	}
}
