package bot

import (
	"context"
	"math/big"
	"testing"

	"github.com/michaelpento.lv/deltabot/chain"
	"github.com/michaelpento.lv/deltabot/config"
	"github.com/michaelpento.lv/deltabot/simulator"
	"github.com/michaelpento.lv/deltabot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingTokens struct {
	*simulator.DryRunTokenManager
	unwrapped []*big.Int
}

func (r *recordingTokens) UnwrapNative(ctx context.Context, amount *big.Int) error {
	r.unwrapped = append(r.unwrapped, amount)
	return nil
}

func newTestBot(t *testing.T, dryRun, canSign bool) (*Bot, *recordingTokens) {
	logger := zaptest.NewLogger(t)
	cfg := config.Defaults()
	cfg.Strategy.DryRun = dryRun

	tokens := &recordingTokens{DryRunTokenManager: simulator.NewDryRunTokenManager(logger)}
	return &Bot{
		cfg:     &cfg,
		tokens:  tokens,
		canSign: canSign,
		logger:  logger,
	}, tokens
}

func TestUnwrapAmount(t *testing.T) {
	b, tokens := newTestBot(t, false, true)

	unwrapped, err := b.Unwrap(context.Background(), types.Units(5))
	require.NoError(t, err)
	assert.Equal(t, types.Units(5).String(), unwrapped.String())
	require.Len(t, tokens.unwrapped, 1)
	assert.Equal(t, types.Units(5).String(), tokens.unwrapped[0].String())
}

func TestUnwrapZeroIsNoop(t *testing.T) {
	b, tokens := newTestBot(t, false, true)

	unwrapped, err := b.Unwrap(context.Background(), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, 0, unwrapped.Sign())
	assert.Empty(t, tokens.unwrapped)
}

func TestRequireSigner(t *testing.T) {
	b, tokens := newTestBot(t, false, false)

	_, err := b.Unwrap(context.Background(), types.Units(1))
	assert.ErrorIs(t, err, chain.ErrNoSigner)
	assert.Empty(t, tokens.unwrapped)

	dry, _ := newTestBot(t, true, false)
	assert.NoError(t, dry.requireSigner())
}

func TestDryRun(t *testing.T) {
	b, _ := newTestBot(t, true, false)
	assert.True(t, b.DryRun())

	b, _ = newTestBot(t, false, true)
	assert.False(t, b.DryRun())
}
