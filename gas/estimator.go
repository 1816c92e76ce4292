package gas

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// Action is a kind of transaction the bot sends
type Action int

const (
	ActionApprove Action = iota
	ActionWrap
	ActionUnwrap
	ActionBuy
	ActionSingleHopSwap
	ActionMultiHopSwap
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionWrap:
		return "wrap"
	case ActionUnwrap:
		return "unwrap"
	case ActionBuy:
		return "buy"
	case ActionSingleHopSwap:
		return "swap_single_hop"
	case ActionMultiHopSwap:
		return "swap_multi_hop"
	default:
		return "unknown"
	}
}

// SwapAction picks the swap action for a path with the given number of legs
func SwapAction(legs int) Action {
	if legs > 2 {
		return ActionMultiHopSwap
	}
	return ActionSingleHopSwap
}

// Limits holds a fixed gas limit per action
type Limits struct {
	Approve       uint64 `yaml:"approve_limit" toml:"approve_limit"`
	Wrap          uint64 `yaml:"wrap_limit" toml:"wrap_limit"`
	Unwrap        uint64 `yaml:"unwrap_limit" toml:"unwrap_limit"`
	Buy           uint64 `yaml:"buy_limit" toml:"buy_limit"`
	SingleHopSwap uint64 `yaml:"single_hop_limit" toml:"single_hop_limit"`
	MultiHopSwap  uint64 `yaml:"multi_hop_limit" toml:"multi_hop_limit"`
}

// DefaultLimits returns conservative limits for a V2-style router and an
// ERC20 position market.
func DefaultLimits() Limits {
	return Limits{
		Approve:       80_000,
		Wrap:          80_000,
		Unwrap:        80_000,
		Buy:           250_000,
		SingleHopSwap: 200_000,
		MultiHopSwap:  325_000,
	}
}

// For returns the limit for an action
func (l Limits) For(a Action) uint64 {
	switch a {
	case ActionApprove:
		return l.Approve
	case ActionWrap:
		return l.Wrap
	case ActionUnwrap:
		return l.Unwrap
	case ActionBuy:
		return l.Buy
	case ActionSingleHopSwap:
		return l.SingleHopSwap
	case ActionMultiHopSwap:
		return l.MultiHopSwap
	default:
		return 0
	}
}

// PriceSuggester is the subset of the node client the estimator needs
type PriceSuggester interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Estimator provides gas limits and a padded gas price per transaction
type Estimator struct {
	client     PriceSuggester
	limits     Limits
	multiplier uint64 // percent applied to the suggested price
	logger     *zap.Logger
}

// NewEstimator creates a new gas estimator. multiplierPct below 100 is raised to 100.
func NewEstimator(client PriceSuggester, limits Limits, multiplierPct uint64, logger *zap.Logger) *Estimator {
	if multiplierPct < 100 {
		multiplierPct = 100
	}
	return &Estimator{
		client:     client,
		limits:     limits,
		multiplier: multiplierPct,
		logger:     logger,
	}
}

// Limit returns the gas limit for an action
func (e *Estimator) Limit(a Action) uint64 {
	return e.limits.For(a)
}

// GasPrice fetches the node's suggestion and pads it by the multiplier
func (e *Estimator) GasPrice(ctx context.Context) (*big.Int, error) {
	suggested, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	price := new(big.Int).Mul(suggested, new(big.Int).SetUint64(e.multiplier))
	price.Div(price, big.NewInt(100))

	e.logger.Debug("Gas price",
		zap.String("suggested", suggested.String()),
		zap.String("padded", price.String()))
	return price, nil
}
