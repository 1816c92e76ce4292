package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"
)

// Client wraps ethclient.Client and throttles every RPC round-trip the bot
// makes through a token bucket. It satisfies bind.ContractBackend and
// bind.DeployBackend, so contract bindings use it directly.
type Client struct {
	*ethclient.Client
	limiter *rate.Limiter
}

// Dial connects to the node at endpoint
func Dial(ctx context.Context, endpoint string, requestsPerSecond float64, burst int) (*Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	return NewClient(client, requestsPerSecond, burst), nil
}

// NewClient wraps an existing connection
func NewClient(client *ethclient.Client, requestsPerSecond float64, burst int) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		Client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rpc rate limiter: %w", err)
	}
	return nil
}

// CallContract executes a read-only contract call
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.CallContract(ctx, msg, blockNumber)
}

// BalanceAt returns the native balance of account
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.BalanceAt(ctx, account, blockNumber)
}

// SendTransaction submits a signed transaction
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.Client.SendTransaction(ctx, tx)
}

// TransactionReceipt returns the receipt of a mined transaction
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.TransactionReceipt(ctx, txHash)
}

// PendingNonceAt returns the next nonce for account
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	return c.Client.PendingNonceAt(ctx, account)
}

// SuggestGasPrice returns the node's legacy gas price suggestion
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.SuggestGasPrice(ctx)
}

// EstimateGas estimates the gas needed for msg
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	return c.Client.EstimateGas(ctx, msg)
}
