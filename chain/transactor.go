package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrTxReverted is returned when a mined transaction has a failed status
	ErrTxReverted = errors.New("transaction reverted")
	// ErrNoSigner is returned when a write is attempted without a private key
	ErrNoSigner = errors.New("no signing key configured")
)

// DefaultReceiptTimeout bounds how long Wait blocks for a receipt
const DefaultReceiptTimeout = 2 * time.Minute

// Transactor signs transactions for the bot wallet and waits for them to be mined
type Transactor struct {
	backend        bind.DeployBackend
	key            *ecdsa.PrivateKey
	chainID        *big.Int
	from           common.Address
	receiptTimeout time.Duration
}

// NewTransactor parses a hex private key. A "0x" prefix is accepted.
func NewTransactor(backend bind.DeployBackend, hexKey string, chainID *big.Int) (*Transactor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Transactor{
		backend:        backend,
		key:            key,
		chainID:        chainID,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		receiptTimeout: DefaultReceiptTimeout,
	}, nil
}

// Address returns the signer's address
func (t *Transactor) Address() common.Address {
	return t.from
}

// Opts builds transact options with a fixed gas limit and legacy gas price.
// value is attached as native currency and may be nil.
func (t *Transactor) Opts(ctx context.Context, gasLimit uint64, gasPrice, value *big.Int) (*bind.TransactOpts, error) {
	if t == nil {
		return nil, ErrNoSigner
	}
	opts, err := bind.NewKeyedTransactorWithChainID(t.key, t.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = gasLimit
	opts.GasPrice = gasPrice
	if value != nil {
		opts.Value = value
	}
	return opts, nil
}

// Wait blocks until tx is mined and fails with ErrTxReverted on a failed receipt
func (t *Transactor) Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, t.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, t.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
