package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Pair represents a V2 pair contract
type Pair struct {
	contract *bind.BoundContract
	address  common.Address
}

// Pair contract ABI
const pairABIJson = `[{
	"constant": true,
	"inputs": [],
	"name": "getReserves",
	"outputs": [
		{"name": "reserve0", "type": "uint112"},
		{"name": "reserve1", "type": "uint112"},
		{"name": "blockTimestampLast", "type": "uint32"}
	],
	"payable": false,
	"stateMutability": "view",
	"type": "function"
}, {
	"constant": true,
	"inputs": [],
	"name": "token0",
	"outputs": [{"name": "", "type": "address"}],
	"payable": false,
	"stateMutability": "view",
	"type": "function"
}, {
	"constant": true,
	"inputs": [],
	"name": "token1",
	"outputs": [{"name": "", "type": "address"}],
	"payable": false,
	"stateMutability": "view",
	"type": "function"
}, {
	"anonymous": false,
	"inputs": [
		{"indexed": true, "name": "sender", "type": "address"},
		{"indexed": false, "name": "amount0In", "type": "uint256"},
		{"indexed": false, "name": "amount1In", "type": "uint256"},
		{"indexed": false, "name": "amount0Out", "type": "uint256"},
		{"indexed": false, "name": "amount1Out", "type": "uint256"},
		{"indexed": true, "name": "to", "type": "address"}
	],
	"name": "Swap",
	"type": "event"
}]`

var pairABI = mustParseABI(pairABIJson)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}

// NewPair binds the pair at address for reads
func NewPair(address common.Address, caller bind.ContractCaller) *Pair {
	return &Pair{
		contract: bind.NewBoundContract(address, pairABI, caller, nil, nil),
		address:  address,
	}
}

// Address returns the pair address
func (p *Pair) Address() common.Address {
	return p.address
}

// GetReserves returns the current reserves of the pair in token0/token1 order
func (p *Pair) GetReserves(ctx context.Context) (reserve0 *big.Int, reserve1 *big.Int, err error) {
	var out []interface{}
	err = p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get reserves: %w", err)
	}
	if len(out) < 2 {
		return nil, nil, fmt.Errorf("unexpected getReserves result length %d", len(out))
	}

	reserve0, ok := out[0].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("failed to parse reserve0")
	}
	reserve1, ok = out[1].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("failed to parse reserve1")
	}

	return reserve0, reserve1, nil
}

// Token0 returns the address of token0
func (p *Pair) Token0(ctx context.Context) (common.Address, error) {
	return p.token(ctx, "token0")
}

// Token1 returns the address of token1
func (p *Pair) Token1(ctx context.Context) (common.Address, error) {
	return p.token(ctx, "token1")
}

func (p *Pair) token(ctx context.Context, method string) (common.Address, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, method)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get %s: %w", method, err)
	}
	if len(out) == 0 {
		return common.Address{}, fmt.Errorf("empty %s result", method)
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("failed to parse %s address", method)
	}

	return addr, nil
}

// SwapEventID is the topic of the pair Swap event
var SwapEventID = pairABI.Events["Swap"].ID

// DecodeSwapAmounts rebuilds the per-hop amounts of a router swap from the
// pair Swap events in a receipt. The result has the router's layout: the
// amount paid into the first pair followed by each pair's output. Logs that
// are not Swap events are skipped.
func DecodeSwapAmounts(logs []*types.Log) ([]*big.Int, error) {
	var amounts []*big.Int
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != SwapEventID {
			continue
		}

		out, err := pairABI.Unpack("Swap", log.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack swap event: %w", err)
		}
		if len(out) != 4 {
			return nil, fmt.Errorf("unexpected swap event length %d", len(out))
		}
		values := make([]*big.Int, len(out))
		for i, v := range out {
			n, ok := v.(*big.Int)
			if !ok {
				return nil, fmt.Errorf("failed to parse swap event amount %d", i)
			}
			values[i] = n
		}

		if len(amounts) == 0 {
			amounts = append(amounts, new(big.Int).Add(values[0], values[1]))
		}
		amounts = append(amounts, new(big.Int).Add(values[2], values[3]))
	}

	if len(amounts) == 0 {
		return nil, fmt.Errorf("no swap events in receipt")
	}
	return amounts, nil
}
