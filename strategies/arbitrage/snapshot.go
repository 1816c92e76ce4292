package arbitrage

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// PriceSnapshot holds the market and fair prices of one cycle together with
// the values derived from them. Prices are in native units per token;
// NativeUSD is the USD value of one native unit.
type PriceSnapshot struct {
	LongMarket  float64
	ShortMarket float64
	NativeUSD   float64
	LongFair    float64
	ShortFair   float64

	// LongDiff and ShortDiff are market deviations from fair in percent
	LongDiff  float64
	ShortDiff float64

	// Whole units worth one USD
	LongsPerUSD  uint64
	ShortsPerUSD uint64
	NativePerUSD uint64
}

// NewPriceSnapshot derives deviations and per-USD amounts. nativeUSD and
// both fair prices must be positive.
func NewPriceSnapshot(longMarket, shortMarket, nativeUSD, longFair, shortFair float64) PriceSnapshot {
	return PriceSnapshot{
		LongMarket:   longMarket,
		ShortMarket:  shortMarket,
		NativeUSD:    nativeUSD,
		LongFair:     longFair,
		ShortFair:    shortFair,
		LongDiff:     longMarket/longFair*100 - 100,
		ShortDiff:    shortMarket/shortFair*100 - 100,
		LongsPerUSD:  wholeUnits(1 / nativeUSD / longFair),
		ShortsPerUSD: wholeUnits(1 / nativeUSD / shortFair),
		NativePerUSD: wholeUnits(1 / nativeUSD),
	}
}

// wholeUnits truncates v toward zero, clamping values uint64 cannot hold
func wholeUnits(v float64) uint64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

func subunits(whole uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(whole), types.Unit)
}

// AmountPerOneUSD returns one USD worth of the route's input asset in subunits
func (s PriceSnapshot) AmountPerOneUSD(r Route) *big.Int {
	switch r {
	case LongNativeShort, LongNative:
		return subunits(s.LongsPerUSD)
	case ShortNativeLong, ShortNative:
		return subunits(s.ShortsPerUSD)
	case NativeLong, NativeShort:
		return subunits(s.NativePerUSD)
	default:
		return new(big.Int)
	}
}

// FairPrice returns the native value of one unit of asset. Native and
// wrapped native are worth one.
func (s PriceSnapshot) FairPrice(asset types.Asset) float64 {
	switch asset {
	case types.AssetLong:
		return s.LongFair
	case types.AssetShort:
		return s.ShortFair
	default:
		return 1
	}
}

// Fingerprint hashes the five input prices so log lines of one market state
// can be grouped.
func (s PriceSnapshot) Fingerprint() uint64 {
	var buf [40]byte
	for i, v := range []float64{s.LongMarket, s.ShortMarket, s.NativeUSD, s.LongFair, s.ShortFair} {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return xxhash.Sum64(buf[:])
}

// Fields returns the snapshot as log fields
func (s PriceSnapshot) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("fingerprint", s.Fingerprint()),
		zap.Float64("long_price", s.LongMarket),
		zap.Float64("short_price", s.ShortMarket),
		zap.Float64("native_usd", s.NativeUSD),
		zap.Float64("long_fair", s.LongFair),
		zap.Float64("short_fair", s.ShortFair),
		zap.Float64("long_diff_pct", s.LongDiff),
		zap.Float64("short_diff_pct", s.ShortDiff),
		zap.Uint64("longs_per_usd", s.LongsPerUSD),
		zap.Uint64("shorts_per_usd", s.ShortsPerUSD),
	}
}
