package types

import (
	"math/big"
)

// Decimals is the number of decimal places of every asset the bot handles.
const Decimals = 9

// Unit is one whole asset unit expressed in subunits (10^Decimals).
var Unit = big.NewInt(1_000_000_000)

// Asset identifies one of the four balances the strategy works with
type Asset int

const (
	AssetNative Asset = iota
	AssetWrapped
	AssetLong
	AssetShort
)

func (a Asset) String() string {
	switch a {
	case AssetNative:
		return "native"
	case AssetWrapped:
		return "wrapped"
	case AssetLong:
		return "long"
	case AssetShort:
		return "short"
	default:
		return "unknown"
	}
}

// Units converts whole units to subunits.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Unit)
}

// Balances is a point-in-time read of the wallet, all values in subunits
type Balances struct {
	Native  *big.Int
	Wrapped *big.Int
	Long    *big.Int
	Short   *big.Int
}

// Get returns the balance held for the given asset.
func (b Balances) Get(asset Asset) *big.Int {
	switch asset {
	case AssetNative:
		return b.Native
	case AssetWrapped:
		return b.Wrapped
	case AssetLong:
		return b.Long
	case AssetShort:
		return b.Short
	default:
		return nil
	}
}
