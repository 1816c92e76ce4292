package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectRoute(t *testing.T) {
	tests := []struct {
		name string
		snap PriceSnapshot
		want Route
	}{
		{"BothWithinThreshold", NewPriceSnapshot(102, 51, 1, 100, 50), Empty},
		{"LongOverShortUnder", NewPriceSnapshot(100, 60, 1, 90, 77), LongNativeShort},
		{"ShortOverLongUnder", NewPriceSnapshot(90, 77, 1, 100, 60), ShortNativeLong},
		{"LongOverOnly", NewPriceSnapshot(110, 50, 1, 100, 50), LongNative},
		{"ShortOverOnly", NewPriceSnapshot(100, 55, 1, 100, 50), ShortNative},
		{"LongUnderOnly", NewPriceSnapshot(90, 50, 1, 100, 50), NativeLong},
		{"ShortUnderOnly", NewPriceSnapshot(100, 45, 1, 100, 50), NativeShort},
		{"LongOverShortUnderWithinThreshold", NewPriceSnapshot(110, 49.5, 1, 100, 50), LongNative},
		{"ExactlyAtThreshold", NewPriceSnapshot(102.5, 50, 1, 100, 50), Empty},
		{"Parity", NewPriceSnapshot(100, 50, 1, 100, 50), Empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRoute(tt.snap, DefaultDiffThreshold))
		})
	}
}

func TestSelectRouteSameSignFavorsLong(t *testing.T) {
	// both overvalued: SHORT deviates more but LONG is checked first
	assert.Equal(t, LongNative, SelectRoute(NewPriceSnapshot(105, 60, 1, 100, 50), DefaultDiffThreshold))
	// both undervalued
	assert.Equal(t, NativeLong, SelectRoute(NewPriceSnapshot(95, 40, 1, 100, 50), DefaultDiffThreshold))
	// LONG within threshold lets SHORT through
	assert.Equal(t, ShortNative, SelectRoute(NewPriceSnapshot(101, 60, 1, 100, 50), DefaultDiffThreshold))
}

func TestSelectRouteProperties(t *testing.T) {
	prices := []float64{0.01, 0.5, 0.9, 0.97, 1, 1.02, 1.03, 1.1, 2, 50}
	fairs := []float64{0.01, 0.5, 1, 1.5, 20}

	for _, longFair := range fairs {
		for _, shortFair := range fairs {
			for _, lm := range prices {
				for _, sm := range prices {
					snap := NewPriceSnapshot(lm*longFair, sm*shortFair, 0.05, longFair, shortFair)
					route := SelectRoute(snap, DefaultDiffThreshold)

					// pure
					assert.Equal(t, route, SelectRoute(snap, DefaultDiffThreshold))
					// total
					assert.Contains(t, Routes, route)

					longOver := snap.LongMarket > snap.LongFair
					shortOver := snap.ShortMarket > snap.ShortFair
					switch route {
					case LongNativeShort:
						assert.True(t, longOver && !shortOver)
					case ShortNativeLong:
						assert.True(t, shortOver && !longOver)
					case LongNative:
						assert.True(t, longOver)
					case ShortNative:
						assert.True(t, shortOver)
					case NativeLong:
						assert.True(t, snap.LongMarket < snap.LongFair)
					case NativeShort:
						assert.True(t, snap.ShortMarket < snap.ShortFair)
					}
				}
			}
		}
	}
}
