package executor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/dex"
	"github.com/michaelpento.lv/deltabot/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"
)

// LiveTokenManager performs token side effects on chain for the bot wallet
type LiveTokenManager struct {
	venue  dex.SwapVenue
	owner  common.Address
	logger *zap.Logger
}

// NewLiveTokenManager creates a token manager acting for owner
func NewLiveTokenManager(venue dex.SwapVenue, owner common.Address, logger *zap.Logger) *LiveTokenManager {
	return &LiveTokenManager{
		venue:  venue,
		owner:  owner,
		logger: logger.Named("tokens"),
	}
}

type approval struct {
	asset   types.Asset
	spender common.Address
}

// ApproveMarkets grants the router and the market unlimited allowances.
// Allowances that are already non-zero are left alone.
func (m *LiveTokenManager) ApproveMarkets(ctx context.Context) error {
	router := m.venue.RouterAddress()
	approvals := []approval{
		{types.AssetWrapped, router},
		{types.AssetLong, router},
		{types.AssetShort, router},
		{types.AssetWrapped, m.venue.MarketAddress()},
	}

	for _, a := range approvals {
		allowance, err := m.venue.Allowance(ctx, a.asset, m.owner, a.spender)
		if err != nil {
			return fmt.Errorf("failed to read %s allowance: %w", a.asset, err)
		}
		if allowance.Sign() != 0 {
			continue
		}

		m.logger.Info("Approving spender",
			zap.String("asset", a.asset.String()),
			zap.String("spender", a.spender.Hex()))
		if err := m.venue.Approve(ctx, a.asset, a.spender, math.MaxBig256); err != nil {
			return fmt.Errorf("failed to approve %s: %w", a.asset, err)
		}
	}
	return nil
}

// WrapNative wraps amount of native currency
func (m *LiveTokenManager) WrapNative(ctx context.Context, amount *big.Int) error {
	m.logger.Info("Wrapping native", zap.String("amount", amount.String()))
	if err := m.venue.WrapNative(ctx, amount); err != nil {
		return fmt.Errorf("failed to wrap native: %w", err)
	}
	return nil
}

// UnwrapNative unwraps amount of wrapped native
func (m *LiveTokenManager) UnwrapNative(ctx context.Context, amount *big.Int) error {
	m.logger.Info("Unwrapping native", zap.String("amount", amount.String()))
	if err := m.venue.UnwrapNative(ctx, amount); err != nil {
		return fmt.Errorf("failed to unwrap native: %w", err)
	}
	return nil
}

// BuyLong spends amount of wrapped native on LONG
func (m *LiveTokenManager) BuyLong(ctx context.Context, amount *big.Int) error {
	m.logger.Info("Buying LONG", zap.String("amount", amount.String()))
	if err := m.venue.BuyLong(ctx, amount); err != nil {
		return fmt.Errorf("failed to buy long: %w", err)
	}
	return nil
}

// BuyShort spends amount of wrapped native on SHORT
func (m *LiveTokenManager) BuyShort(ctx context.Context, amount *big.Int) error {
	m.logger.Info("Buying SHORT", zap.String("amount", amount.String()))
	if err := m.venue.BuyShort(ctx, amount); err != nil {
		return fmt.Errorf("failed to buy short: %w", err)
	}
	return nil
}

// Swap buys exactly amountOut along path for at most amountInMax. The swap
// never expires.
func (m *LiveTokenManager) Swap(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address) ([]*big.Int, error) {
	m.logger.Info("Swapping",
		zap.String("amount_out", amountOut.String()),
		zap.String("amount_in_max", amountInMax.String()),
		zap.Int("legs", len(path)))

	amounts, err := m.venue.SwapForExactOutput(ctx, amountOut, amountInMax, path, recipient, math.MaxBig256)
	if err != nil {
		return nil, fmt.Errorf("failed to swap: %w", err)
	}
	return amounts, nil
}

// ChainBalances reads the four balances of one account through a BalanceOracle
type ChainBalances struct {
	oracle dex.BalanceOracle
	owner  common.Address
}

// NewChainBalances creates a balance reader for owner
func NewChainBalances(oracle dex.BalanceOracle, owner common.Address) *ChainBalances {
	return &ChainBalances{oracle: oracle, owner: owner}
}

func (b *ChainBalances) read(ctx context.Context, asset types.Asset) (*big.Int, error) {
	balance, err := b.oracle.BalanceOf(ctx, asset, b.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", asset, err)
	}
	return balance, nil
}

func (b *ChainBalances) NativeBalance(ctx context.Context) (*big.Int, error) {
	return b.read(ctx, types.AssetNative)
}

func (b *ChainBalances) WrappedBalance(ctx context.Context) (*big.Int, error) {
	return b.read(ctx, types.AssetWrapped)
}

func (b *ChainBalances) LongBalance(ctx context.Context) (*big.Int, error) {
	return b.read(ctx, types.AssetLong)
}

func (b *ChainBalances) ShortBalance(ctx context.Context) (*big.Int, error) {
	return b.read(ctx, types.AssetShort)
}
