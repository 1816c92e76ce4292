package delta

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC20 surface plus the deposit/withdraw pair of the wrapped native token.
// Position tokens only use the ERC20 part.
const tokenABIJson = `[{
	"constant": true,
	"inputs": [{"name": "owner", "type": "address"}],
	"name": "balanceOf",
	"outputs": [{"name": "", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}, {
	"constant": true,
	"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}],
	"name": "allowance",
	"outputs": [{"name": "", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}, {
	"constant": true,
	"inputs": [],
	"name": "decimals",
	"outputs": [{"name": "", "type": "uint8"}],
	"stateMutability": "view",
	"type": "function"
}, {
	"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}],
	"name": "approve",
	"outputs": [{"name": "", "type": "bool"}],
	"stateMutability": "nonpayable",
	"type": "function"
}, {
	"inputs": [],
	"name": "deposit",
	"outputs": [],
	"stateMutability": "payable",
	"type": "function"
}, {
	"inputs": [{"name": "amount", "type": "uint256"}],
	"name": "withdraw",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

var tokenABI = mustParseABI(tokenABIJson)

// Token binds a wrapped-native or position token
type Token struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewToken binds the token at address
func NewToken(address common.Address, backend bind.ContractBackend) *Token {
	return &Token{
		contract: bind.NewBoundContract(address, tokenABI, backend, backend, backend),
		address:  address,
	}
}

// Address returns the token address
func (t *Token) Address() common.Address {
	return t.address
}

// BalanceOf returns the token balance of owner
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callUint(ctx, "balanceOf", owner)
}

// Allowance returns how much spender may move on behalf of owner
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callUint(ctx, "allowance", owner, spender)
}

// Decimals returns the number of decimals of the token's raw amounts
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("failed to call decimals on %s: %w", t.address.Hex(), err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("empty decimals result")
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("failed to parse decimals result")
	}
	return d, nil
}

// Approve lets spender move amount
func (t *Token) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}

// Deposit wraps opts.Value of native currency
func (t *Token) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return t.contract.Transact(opts, "deposit")
}

// Withdraw unwraps amount back to native currency
func (t *Token) Withdraw(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "withdraw", amount)
}

func (t *Token) callUint(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, t.address.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s result", method)
	}
	return n, nil
}
