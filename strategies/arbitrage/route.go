package arbitrage

import (
	"fmt"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/ethereum/go-ethereum/common"
)

// Route is the ordered set of assets a swap passes through
type Route int

const (
	Empty Route = iota
	LongNativeShort
	ShortNativeLong
	LongNative
	ShortNative
	NativeLong
	NativeShort
)

// Routes lists every route, Empty included
var Routes = []Route{Empty, LongNativeShort, ShortNativeLong, LongNative, ShortNative, NativeLong, NativeShort}

func (r Route) String() string {
	switch r {
	case Empty:
		return "Empty"
	case LongNativeShort:
		return "LongNativeShort"
	case ShortNativeLong:
		return "ShortNativeLong"
	case LongNative:
		return "LongNative"
	case ShortNative:
		return "ShortNative"
	case NativeLong:
		return "NativeLong"
	case NativeShort:
		return "NativeShort"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

// IsMultiHop reports whether the route has three legs
func (r Route) IsMultiHop() bool {
	return r == LongNativeShort || r == ShortNativeLong
}

// Assets returns the route's legs as assets. The native legs trade in
// wrapped form. Empty has none.
func (r Route) Assets() []types.Asset {
	switch r {
	case LongNativeShort:
		return []types.Asset{types.AssetLong, types.AssetWrapped, types.AssetShort}
	case ShortNativeLong:
		return []types.Asset{types.AssetShort, types.AssetWrapped, types.AssetLong}
	case LongNative:
		return []types.Asset{types.AssetLong, types.AssetWrapped}
	case ShortNative:
		return []types.Asset{types.AssetShort, types.AssetWrapped}
	case NativeLong:
		return []types.Asset{types.AssetWrapped, types.AssetLong}
	case NativeShort:
		return []types.Asset{types.AssetWrapped, types.AssetShort}
	default:
		return nil
	}
}

// InputAsset is the asset the route spends. It panics on Empty.
func (r Route) InputAsset() types.Asset {
	assets := r.Assets()
	if len(assets) == 0 {
		panic("empty route has no input asset")
	}
	return assets[0]
}

// OutputAsset is the asset the route buys. It panics on Empty.
func (r Route) OutputAsset() types.Asset {
	assets := r.Assets()
	if len(assets) == 0 {
		panic("empty route has no output asset")
	}
	return assets[len(assets)-1]
}

// AssetResolver maps assets to token addresses
type AssetResolver interface {
	AssetAddress(asset types.Asset) (common.Address, error)
}

// Legs resolves the route to token addresses. Empty resolves to no legs.
func (r Route) Legs(resolver AssetResolver) ([]common.Address, error) {
	assets := r.Assets()
	legs := make([]common.Address, 0, len(assets))
	for _, asset := range assets {
		addr, err := resolver.AssetAddress(asset)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s leg of %s: %w", asset, r, err)
		}
		legs = append(legs, addr)
	}
	return legs, nil
}
