package bot

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/chain"
	"github.com/michaelpento.lv/deltabot/config"
	"github.com/michaelpento.lv/deltabot/executor"
	"github.com/michaelpento.lv/deltabot/gas"
	"github.com/michaelpento.lv/deltabot/simulator"
	"github.com/michaelpento.lv/deltabot/strategies/arbitrage"
	"github.com/michaelpento.lv/deltabot/types"
	"github.com/michaelpento.lv/deltabot/utils"
	"github.com/michaelpento.lv/deltabot/utils/lock"
	"github.com/michaelpento.lv/deltabot/utils/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrWalletMismatch is returned when the configured address is not the signer's
var ErrWalletMismatch = errors.New("wallet address does not match private key")

// Bot represents the delta arbitrage bot instance
type Bot struct {
	cfg      *config.Config
	client   *chain.Client
	venue    *executor.Venue
	tokens   arbitrage.TokenManager
	assets   *arbitrage.AssetManager
	engine   *arbitrage.Engine
	registry *prometheus.Registry
	owner    common.Address
	canSign  bool
	logger   *zap.Logger
}

// New connects to the node and wires the strategy. Without a private key the
// bot can read balances and run dry, but not trade.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	client, err := chain.Dial(ctx, cfg.Network.RPCEndpoint, cfg.RPCRateLimit.RequestsPerSecond, cfg.RPCRateLimit.BurstSize)
	if err != nil {
		return nil, err
	}

	var signer executor.Signer
	owner := common.HexToAddress(cfg.Wallet.Address)
	if cfg.Wallet.PrivateKey != "" {
		transactor, err := chain.NewTransactor(client, cfg.Wallet.PrivateKey, cfg.ChainID())
		if err != nil {
			client.Close()
			return nil, err
		}
		if cfg.Wallet.Address != "" && transactor.Address() != owner {
			client.Close()
			return nil, fmt.Errorf("%w: %s != %s", ErrWalletMismatch, cfg.Wallet.Address, transactor.Address().Hex())
		}
		signer = transactor
		owner = transactor.Address()
	}

	estimator := gas.NewEstimator(client, cfg.Gas.Limits, cfg.Gas.PriceMultiplier, logger.Named("gas"))
	venue, err := executor.NewVenue(ctx, client, cfg.ContractAddresses(), estimator, signer, logger)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to bind contracts: %w", err)
	}

	var tokens arbitrage.TokenManager
	if cfg.Strategy.DryRun {
		tokens = simulator.NewDryRunTokenManager(logger)
	} else {
		tokens = executor.NewLiveTokenManager(venue, owner, logger)
	}

	registry := metrics.NewRegistry()
	m := metrics.NewStrategyMetrics(registry, cfg.Metrics.Namespace)

	assets := arbitrage.NewAssetManager(
		executor.NewChainBalances(venue, owner),
		tokens,
		venue,
		cfg.AssetParams(),
		m,
		logger,
	)
	engine := arbitrage.NewEngine(
		arbitrage.NewPriceCalculator(venue),
		assets,
		venue,
		owner,
		cfg.EngineConfig(),
		m,
		logger,
	)

	return &Bot{
		cfg:      cfg,
		client:   client,
		venue:    venue,
		tokens:   tokens,
		assets:   assets,
		engine:   engine,
		registry: registry,
		owner:    owner,
		canSign:  signer != nil,
		logger:   logger,
	}, nil
}

// Run approves the markets, prints balances and then runs the engine on a
// timer until ctx is done. The metrics server and the instance lock run
// alongside it when configured.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.requireSigner(); err != nil {
		return err
	}
	b.logger.Info("Starting delta arbitrage bot",
		zap.String("wallet", b.owner.Hex()),
		zap.Bool("dry_run", b.cfg.Strategy.DryRun),
		zap.Duration("interval", b.cfg.Strategy.Interval))

	g, ctx := errgroup.WithContext(ctx)

	if b.cfg.Lock.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: b.cfg.Lock.RedisAddr})
		defer rdb.Close()

		l := lock.New(rdb, b.cfg.Lock.KeyPrefix, b.owner.Hex(), b.cfg.Lock.TTL, b.logger)
		if err := l.Acquire(ctx); err != nil {
			return err
		}
		g.Go(func() error {
			return l.Hold(ctx)
		})
	}

	if b.cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(ctx, b.cfg.Metrics.ListenAddr, b.registry, b.logger)
		})
	}

	g.Go(func() error {
		if err := b.tokens.ApproveMarkets(ctx); err != nil {
			return fmt.Errorf("failed to approve markets: %w", err)
		}
		if err := b.assets.PrintBalances(ctx); err != nil {
			return fmt.Errorf("failed to read balances: %w", err)
		}
		return b.engine.Run(ctx, arbitrage.NewTimerSource(b.cfg.Strategy.Interval, b.logger))
	})

	return g.Wait()
}

// Balances reads the wallet's four balances
func (b *Bot) Balances(ctx context.Context) (types.Balances, error) {
	return b.assets.ReadBalances(ctx)
}

// Unwrap unwraps amount of wrapped native, or the whole wrapped balance when
// amount is nil. It returns the amount unwrapped, zero when there was
// nothing to do.
func (b *Bot) Unwrap(ctx context.Context, amount *big.Int) (*big.Int, error) {
	if err := b.requireSigner(); err != nil {
		return nil, err
	}
	if amount == nil {
		balance, err := b.venue.BalanceOf(ctx, types.AssetWrapped, b.owner)
		if err != nil {
			return nil, err
		}
		amount = balance
	}

	if amount.Sign() == 0 {
		b.logger.Info("Nothing to unwrap")
		return amount, nil
	}

	b.logger.Info("Unwrapping", zap.String("amount", utils.Humanize(amount)))
	if err := b.tokens.UnwrapNative(ctx, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// DryRun reports whether writes are simulated instead of sent
func (b *Bot) DryRun() bool {
	return b.cfg.Strategy.DryRun
}

func (b *Bot) requireSigner() error {
	if b.canSign || b.cfg.Strategy.DryRun {
		return nil
	}
	return fmt.Errorf("%w: set %s or enable dry run", chain.ErrNoSigner, config.EnvPrivateKey)
}

// Owner returns the wallet the bot trades for
func (b *Bot) Owner() common.Address {
	return b.owner
}

// Close releases the node connection
func (b *Bot) Close() {
	b.client.Close()
}
