package uniswap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/dex"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru"
)

const routerABIJson = `[{
	"inputs": [
		{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
		{"internalType": "address[]", "name": "path", "type": "address[]"}
	],
	"name": "getAmountsOut",
	"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
	"stateMutability": "view",
	"type": "function"
}, {
	"inputs": [
		{"internalType": "uint256", "name": "amountOut", "type": "uint256"},
		{"internalType": "uint256", "name": "amountInMax", "type": "uint256"},
		{"internalType": "address[]", "name": "path", "type": "address[]"},
		{"internalType": "address", "name": "to", "type": "address"},
		{"internalType": "uint256", "name": "deadline", "type": "uint256"}
	],
	"name": "swapTokensForExactTokens",
	"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

var routerABI = mustParseABI(routerABIJson)

// pairCacheSize bounds the number of pair bindings kept alive
const pairCacheSize = 16

type cachedPair struct {
	pair   *Pair
	token0 common.Address
}

// V2 talks to a V2-style router and its pairs
type V2 struct {
	backend bind.ContractBackend
	router  common.Address
	routerC *bind.BoundContract
	pairs   *lru.Cache
}

// NewV2 binds the router at routerAddress
func NewV2(backend bind.ContractBackend, routerAddress common.Address) (*V2, error) {
	pairs, err := lru.New(pairCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pair cache: %w", err)
	}

	return &V2{
		backend: backend,
		router:  routerAddress,
		routerC: bind.NewBoundContract(routerAddress, routerABI, backend, backend, backend),
		pairs:   pairs,
	}, nil
}

// GetRouterAddress returns the router contract address
func (u *V2) GetRouterAddress() common.Address {
	return u.router
}

// Reserves reads a pair and orders its reserves so that the position token
// side comes first.
func (u *V2) Reserves(ctx context.Context, pairAddress, positionToken common.Address) (*dex.Reserves, error) {
	entry, err := u.getPair(ctx, pairAddress)
	if err != nil {
		return nil, err
	}

	reserve0, reserve1, err := entry.pair.GetReserves(ctx)
	if err != nil {
		return nil, err
	}

	if entry.token0 == positionToken {
		return &dex.Reserves{Position: reserve0, Wrapped: reserve1}, nil
	}
	return &dex.Reserves{Position: reserve1, Wrapped: reserve0}, nil
}

// GetAmountsOut quotes a swap of amountIn along path
func (u *V2) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("invalid path length %d", len(path))
	}

	var out []interface{}
	if err := u.routerC.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountsOut", amountIn, path); err != nil {
		return nil, fmt.Errorf("failed to get amounts out: %w", err)
	}
	return parseAmounts(out)
}

// PreviewSwapTokensForExactTokens runs the swap as a call from sender and
// returns the amounts it would execute with at the current state.
func (u *V2) PreviewSwapTokensForExactTokens(ctx context.Context, sender common.Address, amountOut, amountInMax *big.Int, path []common.Address, to common.Address, deadline *big.Int) ([]*big.Int, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: sender}
	if err := u.routerC.Call(opts, &out, "swapTokensForExactTokens", amountOut, amountInMax, path, to, deadline); err != nil {
		return nil, fmt.Errorf("failed to preview swap: %w", err)
	}
	return parseAmounts(out)
}

// SwapTokensForExactTokens sends the swap transaction
func (u *V2) SwapTokensForExactTokens(opts *bind.TransactOpts, amountOut, amountInMax *big.Int, path []common.Address, to common.Address, deadline *big.Int) (*types.Transaction, error) {
	tx, err := u.routerC.Transact(opts, "swapTokensForExactTokens", amountOut, amountInMax, path, to, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to send swap: %w", err)
	}
	return tx, nil
}

// getPair returns the pair binding and its token0, cached after the first lookup
func (u *V2) getPair(ctx context.Context, pairAddress common.Address) (*cachedPair, error) {
	if v, ok := u.pairs.Get(pairAddress); ok {
		return v.(*cachedPair), nil
	}

	pair := NewPair(pairAddress, u.backend)
	token0, err := pair.Token0(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pair %s: %w", pairAddress.Hex(), err)
	}

	entry := &cachedPair{pair: pair, token0: token0}
	u.pairs.Add(pairAddress, entry)
	return entry, nil
}

func parseAmounts(out []interface{}) ([]*big.Int, error) {
	if len(out) == 0 {
		return nil, fmt.Errorf("empty amounts result")
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to parse amounts")
	}
	return amounts, nil
}
