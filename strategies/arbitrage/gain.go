package arbitrage

import (
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"
	bigmath "github.com/michaelpento.lv/deltabot/utils/math"
)

const (
	// DefaultMultiHopCost is the assumed execution cost of a three-leg swap in native units
	DefaultMultiHopCost = 12.5
	// DefaultSingleHopCost is the assumed execution cost of a two-leg swap in native units
	DefaultSingleHopCost = 7.0
)

var subunitsPerUnit = float64(types.Unit.Int64())

// GainEstimator values a swap in native units net of a flat execution cost
type GainEstimator struct {
	MultiHopCost  float64
	SingleHopCost float64
}

func DefaultGainEstimator() GainEstimator {
	return GainEstimator{
		MultiHopCost:  DefaultMultiHopCost,
		SingleHopCost: DefaultSingleHopCost,
	}
}

// Cost returns the flat execution cost of a route
func (g GainEstimator) Cost(r Route) float64 {
	if r.IsMultiHop() {
		return g.MultiHopCost
	}
	return g.SingleHopCost
}

// Estimate values amountIn of the route's input and amountOut of its output
// at fair prices and returns the difference in native units minus the cost.
// Empty always yields zero.
func (g GainEstimator) Estimate(amountIn, amountOut *big.Int, s PriceSnapshot, r Route) float64 {
	if r == Empty {
		return 0
	}

	in := bigmath.ToFloat(amountIn) * s.FairPrice(r.InputAsset())
	out := bigmath.ToFloat(amountOut) * s.FairPrice(r.OutputAsset())
	return (out-in)/subunitsPerUnit - g.Cost(r)
}
