package simulator

import (
	"context"
	"math/big"

	"github.com/michaelpento.lv/deltabot/utils"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DryRunTokenManager logs every token operation instead of sending it.
// Balances never change, so a dry-run bot keeps seeing the same wallet.
type DryRunTokenManager struct {
	logger *zap.Logger
}

// NewDryRunTokenManager creates a token manager without side effects
func NewDryRunTokenManager(logger *zap.Logger) *DryRunTokenManager {
	return &DryRunTokenManager{
		logger: logger.Named("dry-run"),
	}
}

func (d *DryRunTokenManager) ApproveMarkets(ctx context.Context) error {
	d.logger.Info("Skipping market approvals")
	return nil
}

func (d *DryRunTokenManager) WrapNative(ctx context.Context, amount *big.Int) error {
	d.logger.Info("Would wrap native", zap.String("amount", utils.Humanize(amount)))
	return nil
}

func (d *DryRunTokenManager) UnwrapNative(ctx context.Context, amount *big.Int) error {
	d.logger.Info("Would unwrap native", zap.String("amount", utils.Humanize(amount)))
	return nil
}

func (d *DryRunTokenManager) BuyLong(ctx context.Context, amount *big.Int) error {
	d.logger.Info("Would buy LONG", zap.String("amount", utils.Humanize(amount)))
	return nil
}

func (d *DryRunTokenManager) BuyShort(ctx context.Context, amount *big.Int) error {
	d.logger.Info("Would buy SHORT", zap.String("amount", utils.Humanize(amount)))
	return nil
}

// Swap reports the swap as if it filled at its limits: amountInMax spent
// for exactly amountOut.
func (d *DryRunTokenManager) Swap(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address) ([]*big.Int, error) {
	d.logger.Info("Would swap",
		zap.String("amount_out", utils.Humanize(amountOut)),
		zap.String("amount_in_max", utils.Humanize(amountInMax)),
		zap.Int("legs", len(path)),
		zap.String("recipient", recipient.Hex()))
	return []*big.Int{new(big.Int).Set(amountInMax), new(big.Int).Set(amountOut)}, nil
}
