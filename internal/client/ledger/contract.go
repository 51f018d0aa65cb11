package ledger

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// DefaultPollInterval is used by WaitFinal when no interval is given.
const DefaultPollInterval = time.Second

// Backend is the subset of an Ethereum node the contract binding needs.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to a JSON-RPC endpoint (http, ws or ipc).
func Dial(ctx context.Context, rawURL string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// Contract is a typed binding of the diary contract.
type Contract struct {
	address common.Address
	backend Backend
	bound   *bind.BoundContract
}

// NewContract binds the diary ABI at address.
func NewContract(address common.Address, backend Backend) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(diaryABI))
	if err != nil {
		return nil, fmt.Errorf("parse diary abi: %w", err)
	}
	return &Contract{
		address: address,
		backend: backend,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ChainID asks the node for its chain id.
func (c *Contract) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return id, nil
}

// Ping checks that the node answers.
func (c *Contract) Ping(ctx context.Context) error {
	if _, err := c.backend.BlockNumber(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

// AddEntry builds, signs (through opts.Signer) and broadcasts one addEntry
// transaction. Errors returned by opts.Signer stay matchable with errors.Is.
func (c *Contract) AddEntry(opts *bind.TransactOpts, e models.WireEntry) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, methodAddEntry, e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note)
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

// GetMyEntries calls getMyEntries as from and returns the raw tuples in
// ledger order.
func (c *Contract) GetMyEntries(ctx context.Context, from common.Address) ([]models.WireTuple, error) {
	var out []any
	if err := c.bound.Call(&bind.CallOpts{Context: ctx, From: from}, &out, methodGetMyEntries); err != nil {
		return nil, mapError(err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return tuplesOf(out[0])
}

// tuplesOf flattens the abi-generated slice of anonymous structs into
// positional tuples.
func tuplesOf(v any) ([]models.WireTuple, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: unexpected %T", ErrMalformedResponse, v)
	}

	result := make([]models.WireTuple, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := reflect.Indirect(rv.Index(i))
		var tuple models.WireTuple

		switch item.Kind() {
		case reflect.Struct:
			tuple = make(models.WireTuple, item.NumField())
			for j := range tuple {
				if f := item.Field(j); f.CanInterface() {
					tuple[j] = f.Interface()
				}
			}
		case reflect.Slice, reflect.Array:
			tuple = make(models.WireTuple, item.Len())
			for j := range tuple {
				tuple[j] = item.Index(j).Interface()
			}
		}
		result = append(result, tuple)
	}
	return result, nil
}

// WaitFinal blocks until tx is mined with a successful receipt and
// confirmations blocks (counting the inclusion block) exist on top of it.
func (c *Contract) WaitFinal(ctx context.Context, tx *types.Transaction, confirmations uint64, poll time.Duration) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, mapError(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: tx %s", ErrReverted, tx.Hash().Hex())
	}
	if confirmations <= 1 || receipt.BlockNumber == nil {
		return receipt, nil
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	target := receipt.BlockNumber.Uint64() + confirmations - 1
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		// head lookups are retried until ctx ends
		head, err := c.backend.BlockNumber(ctx)
		if err == nil && head >= target {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return receipt, mapError(ctx.Err())
		case <-ticker.C:
		}
	}
}
