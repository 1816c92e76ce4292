package arbitrage

import "math"

// DefaultDiffThreshold is the deviation in percent a price must exceed to trade
const DefaultDiffThreshold = 2.5

// SelectRoute picks the route that trades the mispriced assets back toward
// fair value. The first matching rule wins:
//
//  1. LONG over, SHORT under, both beyond threshold: LongNativeShort
//  2. SHORT over, LONG under, both beyond threshold: ShortNativeLong
//  3. LONG over: LongNative
//  4. SHORT over: ShortNative
//  5. LONG under: NativeLong
//  6. SHORT under: NativeShort
//
// When both deviate in the same direction LONG is always checked first, so
// a qualifying SHORT deviation is not traded in that cycle.
func SelectRoute(s PriceSnapshot, threshold float64) Route {
	longDelta := s.LongMarket - s.LongFair
	shortDelta := s.ShortMarket - s.ShortFair
	longDiff := math.Abs(s.LongDiff)
	shortDiff := math.Abs(s.ShortDiff)

	switch {
	case longDelta > 0 && shortDelta < 0 && longDiff > threshold && shortDiff > threshold:
		return LongNativeShort
	case shortDelta > 0 && longDelta < 0 && longDiff > threshold && shortDiff > threshold:
		return ShortNativeLong
	case longDelta > 0 && longDiff > threshold:
		return LongNative
	case shortDelta > 0 && shortDiff > threshold:
		return ShortNative
	case longDelta < 0 && longDiff > threshold:
		return NativeLong
	case shortDelta < 0 && shortDiff > threshold:
		return NativeShort
	default:
		return Empty
	}
}
