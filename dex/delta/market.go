package delta

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/michaelpento.lv/deltabot/dex"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const marketABIJson = `[{
	"inputs": [],
	"name": "getMarketState",
	"outputs": [
		{"name": "longLiquidity", "type": "uint256"},
		{"name": "longTotalSupply", "type": "uint256"},
		{"name": "shortLiquidity", "type": "uint256"},
		{"name": "shortTotalSupply", "type": "uint256"},
		{"name": "price", "type": "uint256"}
	],
	"stateMutability": "view",
	"type": "function"
}, {
	"inputs": [{"name": "amount", "type": "uint256"}],
	"name": "depositLong",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}, {
	"inputs": [{"name": "amount", "type": "uint256"}],
	"name": "depositShort",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

var marketABI = mustParseABI(marketABIJson)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}

// Market is the position market that mints LONG and SHORT tokens against
// wrapped native deposits and tracks their fair value.
type Market struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewMarket binds the market at address
func NewMarket(address common.Address, backend bind.ContractBackend) *Market {
	return &Market{
		contract: bind.NewBoundContract(address, marketABI, backend, backend, backend),
		address:  address,
	}
}

// Address returns the market address
func (m *Market) Address() common.Address {
	return m.address
}

// GetMarketState reads the liquidity, supply and price the fair values derive from
func (m *Market) GetMarketState(ctx context.Context) (*dex.MarketState, error) {
	var out []interface{}
	if err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMarketState"); err != nil {
		return nil, fmt.Errorf("failed to get market state: %w", err)
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected market state length %d", len(out))
	}

	values := make([]*big.Int, len(out))
	for i, v := range out {
		n, ok := v.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("failed to parse market state field %d", i)
		}
		values[i] = n
	}

	return &dex.MarketState{
		LongLiquidity:  values[0],
		LongSupply:     values[1],
		ShortLiquidity: values[2],
		ShortSupply:    values[3],
		Price:          values[4],
	}, nil
}

// DepositLong buys LONG tokens with amount of wrapped native
func (m *Market) DepositLong(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "depositLong", amount)
}

// DepositShort buys SHORT tokens with amount of wrapped native
func (m *Market) DepositShort(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "depositShort", amount)
}
