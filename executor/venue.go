package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/chain"
	"github.com/michaelpento.lv/deltabot/dex"
	"github.com/michaelpento.lv/deltabot/dex/delta"
	"github.com/michaelpento.lv/deltabot/dex/uniswap"
	"github.com/michaelpento.lv/deltabot/gas"
	"github.com/michaelpento.lv/deltabot/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	// ErrNoTokenAddress is returned when a token address is requested for native currency
	ErrNoTokenAddress = errors.New("asset has no token address")
	// ErrUnsupportedDecimals is returned for tokens with fewer decimals than types.Decimals
	ErrUnsupportedDecimals = errors.New("token has fewer decimals than the subunit")
)

// Contracts holds the deployed addresses the venue talks to
type Contracts struct {
	Router    common.Address
	Market    common.Address
	Wrapped   common.Address
	Long      common.Address
	Short     common.Address
	LongPair  common.Address
	ShortPair common.Address
}

// Backend is the node surface the venue needs
type Backend interface {
	bind.ContractBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Signer signs and confirms transactions. *chain.Transactor implements it.
type Signer interface {
	Address() common.Address
	Opts(ctx context.Context, gasLimit uint64, gasPrice, value *big.Int) (*bind.TransactOpts, error)
	Wait(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

// Venue implements dex.PriceSource, dex.BalanceOracle and dex.SwapVenue on
// chain. Every amount crossing the venue is in subunits of types.Decimals;
// raw token amounts are scaled by each token's own decimals, and native
// currency shares the wrapped token's scale.
type Venue struct {
	backend   Backend
	contracts Contracts
	router    *uniswap.V2
	market    *delta.Market
	tokens    map[types.Asset]*delta.Token
	scales    map[types.Asset]*big.Int
	byAddress map[common.Address]types.Asset
	gas       *gas.Estimator
	signer    Signer
	logger    *zap.Logger
}

var (
	_ dex.PriceSource   = (*Venue)(nil)
	_ dex.BalanceOracle = (*Venue)(nil)
	_ dex.SwapVenue     = (*Venue)(nil)
)

// NewVenue binds all contracts and reads each token's decimals. signer may
// be nil for read-only use, in which case every write fails with
// chain.ErrNoSigner.
func NewVenue(ctx context.Context, backend Backend, contracts Contracts, estimator *gas.Estimator, signer Signer, logger *zap.Logger) (*Venue, error) {
	router, err := uniswap.NewV2(backend, contracts.Router)
	if err != nil {
		return nil, err
	}

	v := &Venue{
		backend:   backend,
		contracts: contracts,
		router:    router,
		market:    delta.NewMarket(contracts.Market, backend),
		tokens: map[types.Asset]*delta.Token{
			types.AssetWrapped: delta.NewToken(contracts.Wrapped, backend),
			types.AssetLong:    delta.NewToken(contracts.Long, backend),
			types.AssetShort:   delta.NewToken(contracts.Short, backend),
		},
		scales:    make(map[types.Asset]*big.Int),
		byAddress: make(map[common.Address]types.Asset),
		gas:       estimator,
		signer:    signer,
		logger:    logger.Named("venue"),
	}

	for asset, token := range v.tokens {
		decimals, err := token.Decimals(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s decimals: %w", asset, err)
		}
		if decimals < types.Decimals {
			return nil, fmt.Errorf("%w: %s has %d", ErrUnsupportedDecimals, asset, decimals)
		}
		v.scales[asset] = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-types.Decimals)), nil)
		v.byAddress[token.Address()] = asset
	}
	v.scales[types.AssetNative] = v.scales[types.AssetWrapped]

	return v, nil
}

// MarketReserves reads one of the two pools
func (v *Venue) MarketReserves(ctx context.Context, pair dex.Pair) (*dex.Reserves, error) {
	var (
		reserves *dex.Reserves
		position types.Asset
		err      error
	)
	switch pair {
	case dex.PairLongWrapped:
		position = types.AssetLong
		reserves, err = v.router.Reserves(ctx, v.contracts.LongPair, v.contracts.Long)
	case dex.PairWrappedShort:
		position = types.AssetShort
		reserves, err = v.router.Reserves(ctx, v.contracts.ShortPair, v.contracts.Short)
	default:
		return nil, fmt.Errorf("unknown pair %d", pair)
	}
	if err != nil {
		return nil, err
	}

	return &dex.Reserves{
		Position: v.toUnits(position, reserves.Position),
		Wrapped:  v.toUnits(types.AssetWrapped, reserves.Wrapped),
	}, nil
}

// FairValueState reads the position market state. The price is passed
// through unscaled.
func (v *Venue) FairValueState(ctx context.Context) (*dex.MarketState, error) {
	state, err := v.market.GetMarketState(ctx)
	if err != nil {
		return nil, err
	}

	return &dex.MarketState{
		LongLiquidity:  v.toUnits(types.AssetWrapped, state.LongLiquidity),
		LongSupply:     v.toUnits(types.AssetLong, state.LongSupply),
		ShortLiquidity: v.toUnits(types.AssetWrapped, state.ShortLiquidity),
		ShortSupply:    v.toUnits(types.AssetShort, state.ShortSupply),
		Price:          state.Price,
	}, nil
}

// BalanceOf returns the balance of owner. Native balance comes from the account itself.
func (v *Venue) BalanceOf(ctx context.Context, asset types.Asset, owner common.Address) (*big.Int, error) {
	if asset == types.AssetNative {
		balance, err := v.backend.BalanceAt(ctx, owner, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get native balance: %w", err)
		}
		return v.toUnits(asset, balance), nil
	}

	token, err := v.token(asset)
	if err != nil {
		return nil, err
	}
	balance, err := token.BalanceOf(ctx, owner)
	if err != nil {
		return nil, err
	}
	return v.toUnits(asset, balance), nil
}

// AssetAddress returns the token address of asset
func (v *Venue) AssetAddress(asset types.Asset) (common.Address, error) {
	token, err := v.token(asset)
	if err != nil {
		return common.Address{}, err
	}
	return token.Address(), nil
}

// RouterAddress returns the swap router address
func (v *Venue) RouterAddress() common.Address {
	return v.contracts.Router
}

// MarketAddress returns the position market address
func (v *Venue) MarketAddress() common.Address {
	return v.contracts.Market
}

// QuoteAmountsOut quotes amountIn along path
func (v *Venue) QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	assets, err := v.pathAssets(path)
	if err != nil {
		return nil, err
	}

	raw, err := v.router.GetAmountsOut(ctx, v.toRaw(assets[0], amountIn), path)
	if err != nil {
		return nil, err
	}
	return v.amountsToUnits(assets, raw)
}

// SwapForExactOutput sends the swap and returns the amounts it actually
// moved, decoded from the pair Swap events of its receipt. The swap is
// simulated first so a reverting swap is never sent.
func (v *Venue) SwapForExactOutput(ctx context.Context, amountOut, amountInMax *big.Int, path []common.Address, recipient common.Address, deadline *big.Int) ([]*big.Int, error) {
	if v.signer == nil {
		return nil, chain.ErrNoSigner
	}
	assets, err := v.pathAssets(path)
	if err != nil {
		return nil, err
	}
	rawOut := v.toRaw(assets[len(assets)-1], amountOut)
	rawInMax := v.toRaw(assets[0], amountInMax)

	if _, err := v.router.PreviewSwapTokensForExactTokens(ctx, v.signer.Address(), rawOut, rawInMax, path, recipient, deadline); err != nil {
		return nil, err
	}

	receipt, err := v.send(ctx, gas.SwapAction(len(path)), nil, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return v.router.SwapTokensForExactTokens(opts, rawOut, rawInMax, path, recipient, deadline)
	})
	if err != nil {
		return nil, err
	}

	executed, err := uniswap.DecodeSwapAmounts(receipt.Logs)
	if err != nil {
		return nil, fmt.Errorf("failed to read executed amounts of %s: %w", receipt.TxHash.Hex(), err)
	}
	return v.amountsToUnits(assets, executed)
}

// Allowance returns the allowance owner granted spender on asset
func (v *Venue) Allowance(ctx context.Context, asset types.Asset, owner, spender common.Address) (*big.Int, error) {
	token, err := v.token(asset)
	if err != nil {
		return nil, err
	}
	allowance, err := token.Allowance(ctx, owner, spender)
	if err != nil {
		return nil, err
	}
	return v.toUnits(asset, allowance), nil
}

// Approve lets spender move amount of asset
func (v *Venue) Approve(ctx context.Context, asset types.Asset, spender common.Address, amount *big.Int) error {
	token, err := v.token(asset)
	if err != nil {
		return err
	}
	raw := v.toRaw(asset, amount)
	_, err = v.send(ctx, gas.ActionApprove, nil, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return token.Approve(opts, spender, raw)
	})
	return err
}

// WrapNative converts amount of native currency into the wrapped token
func (v *Venue) WrapNative(ctx context.Context, amount *big.Int) error {
	_, err := v.send(ctx, gas.ActionWrap, v.toRaw(types.AssetNative, amount), v.tokens[types.AssetWrapped].Deposit)
	return err
}

// UnwrapNative converts amount of the wrapped token back to native currency
func (v *Venue) UnwrapNative(ctx context.Context, amount *big.Int) error {
	raw := v.toRaw(types.AssetWrapped, amount)
	_, err := v.send(ctx, gas.ActionUnwrap, nil, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return v.tokens[types.AssetWrapped].Withdraw(opts, raw)
	})
	return err
}

// BuyLong deposits amount of wrapped native into the market for LONG
func (v *Venue) BuyLong(ctx context.Context, amount *big.Int) error {
	raw := v.toRaw(types.AssetWrapped, amount)
	_, err := v.send(ctx, gas.ActionBuy, nil, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return v.market.DepositLong(opts, raw)
	})
	return err
}

// BuyShort deposits amount of wrapped native into the market for SHORT
func (v *Venue) BuyShort(ctx context.Context, amount *big.Int) error {
	raw := v.toRaw(types.AssetWrapped, amount)
	_, err := v.send(ctx, gas.ActionBuy, nil, func(opts *bind.TransactOpts) (*ethtypes.Transaction, error) {
		return v.market.DepositShort(opts, raw)
	})
	return err
}

func (v *Venue) token(asset types.Asset) (*delta.Token, error) {
	token, ok := v.tokens[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTokenAddress, asset)
	}
	return token, nil
}

// toUnits scales a raw chain amount down to subunits, truncating
func (v *Venue) toUnits(asset types.Asset, raw *big.Int) *big.Int {
	return new(big.Int).Quo(raw, v.scales[asset])
}

// toRaw scales subunits up to the raw chain amount, saturating at the
// uint256 maximum so unlimited approvals stay unlimited.
func (v *Venue) toRaw(asset types.Asset, amount *big.Int) *big.Int {
	if amount.Cmp(math.MaxBig256) == 0 {
		return new(big.Int).Set(math.MaxBig256)
	}
	raw := new(big.Int).Mul(amount, v.scales[asset])
	if raw.Cmp(math.MaxBig256) > 0 {
		return new(big.Int).Set(math.MaxBig256)
	}
	return raw
}

func (v *Venue) pathAssets(path []common.Address) ([]types.Asset, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("swap path needs at least two tokens, got %d", len(path))
	}
	assets := make([]types.Asset, len(path))
	for i, addr := range path {
		asset, ok := v.byAddress[addr]
		if !ok {
			return nil, fmt.Errorf("unknown token %s in swap path", addr.Hex())
		}
		assets[i] = asset
	}
	return assets, nil
}

func (v *Venue) amountsToUnits(assets []types.Asset, raw []*big.Int) ([]*big.Int, error) {
	if len(raw) != len(assets) {
		return nil, fmt.Errorf("got %d amounts for a %d token path", len(raw), len(assets))
	}
	amounts := make([]*big.Int, len(raw))
	for i, r := range raw {
		amounts[i] = v.toUnits(assets[i], r)
	}
	return amounts, nil
}

// send builds options for action, submits the transaction and waits for its receipt
func (v *Venue) send(ctx context.Context, action gas.Action, value *big.Int, submit func(*bind.TransactOpts) (*ethtypes.Transaction, error)) (*ethtypes.Receipt, error) {
	if v.signer == nil {
		return nil, chain.ErrNoSigner
	}

	gasPrice, err := v.gas.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := v.signer.Opts(ctx, v.gas.Limit(action), gasPrice, value)
	if err != nil {
		return nil, err
	}

	tx, err := submit(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", action, err)
	}
	v.logger.Info("Transaction sent",
		zap.String("action", action.String()),
		zap.String("hash", tx.Hash().Hex()))

	receipt, err := v.signer.Wait(ctx, tx)
	if err != nil {
		return nil, err
	}
	v.logger.Info("Transaction mined",
		zap.String("action", action.String()),
		zap.String("hash", tx.Hash().Hex()),
		zap.Uint64("gas_used", receipt.GasUsed))
	return receipt, nil
}
