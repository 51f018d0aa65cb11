package session

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Ledger is the contract surface a Wallet drives. *ledger.Contract
// satisfies it.
type Ledger interface {
	Address() common.Address
	AddEntry(opts *bind.TransactOpts, e models.WireEntry) (*types.Transaction, error)
	GetMyEntries(ctx context.Context, from common.Address) ([]models.WireTuple, error)
	WaitFinal(ctx context.Context, tx *types.Transaction, confirmations uint64, poll time.Duration) (*types.Receipt, error)
}

// AuthorizationRequest describes a transaction awaiting the user's approval.
type AuthorizationRequest struct {
	From     string
	Contract string
	Nonce    uint64
	Gas      uint64
	Entry    models.WireEntry
}

// Authorizer asks the user whether a transaction may be signed.
type Authorizer func(ctx context.Context, req AuthorizationRequest) (bool, error)

// Option configures a Wallet.
type Option func(*Wallet)

// WithAuthorizer installs a hook consulted before every signature.
func WithAuthorizer(a Authorizer) Option {
	return func(w *Wallet) { w.authorize = a }
}

// WithConfirmations sets how many blocks, including the inclusion block,
// make a transaction final.
func WithConfirmations(n uint64) Option {
	return func(w *Wallet) { w.confirmations = n }
}

// WithPollInterval sets how often finality is polled.
func WithPollInterval(d time.Duration) Option {
	return func(w *Wallet) { w.poll = d }
}

// Wallet is a Session backed by a local secp256k1 key.
type Wallet struct {
	ledger        Ledger
	chainID       *big.Int
	from          common.Address
	authorize     Authorizer
	confirmations uint64
	poll          time.Duration

	mu  sync.RWMutex
	key *ecdsa.PrivateKey
}

var _ Session = (*Wallet)(nil)

// NewWallet creates a session for key on the given chain.
func NewWallet(l Ledger, key *ecdsa.PrivateKey, chainID *big.Int, opts ...Option) (*Wallet, error) {
	if key == nil {
		return nil, errors.New("nil private key")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain id %v", chainID)
	}

	w := &Wallet{
		ledger:        l,
		chainID:       new(big.Int).Set(chainID),
		from:          crypto.PubkeyToAddress(key.PublicKey),
		key:           key,
		confirmations: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// KeyFromHex parses a hex-encoded private key, with or without 0x prefix.
func KeyFromHex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// KeyFromKeystore decrypts a Web3 secret storage file.
func KeyFromKeystore(path string, passphrase []byte) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	k, err := keystore.DecryptKey(data, string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return k.PrivateKey, nil
}

func (w *Wallet) Available() bool {
	if w == nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.key != nil
}

func (w *Wallet) Identity() string {
	return w.from.Hex()
}

// Close forgets the key. The session stays readable but can no longer sign.
func (w *Wallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.key = nil
}

func (w *Wallet) transactOpts(ctx context.Context, e models.WireEntry) (*bind.TransactOpts, error) {
	w.mu.RLock()
	key := w.key
	w.mu.RUnlock()
	if key == nil {
		return nil, errors.New("session closed")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, w.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	sign := opts.Signer
	opts.Signer = func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if w.authorize != nil {
			ok, err := w.authorize(ctx, AuthorizationRequest{
				From:     addr.Hex(),
				Contract: w.ledger.Address().Hex(),
				Nonce:    tx.Nonce(),
				Gas:      tx.Gas(),
				Entry:    e,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDeclined, err)
			}
			if !ok {
				return nil, ErrDeclined
			}
		}
		return sign(addr, tx)
	}
	return opts, nil
}

func (w *Wallet) AddEntry(ctx context.Context, e models.WireEntry) (Pending, error) {
	opts, err := w.transactOpts(ctx, e)
	if err != nil {
		return nil, err
	}
	tx, err := w.ledger.AddEntry(opts, e)
	if err != nil {
		return nil, err
	}
	return &pendingTx{ledger: w.ledger, tx: tx, confirmations: w.confirmations, poll: w.poll}, nil
}

func (w *Wallet) GetMyEntries(ctx context.Context) ([]models.WireTuple, error) {
	return w.ledger.GetMyEntries(ctx, w.from)
}

type pendingTx struct {
	ledger        Ledger
	tx            *types.Transaction
	confirmations uint64
	poll          time.Duration
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

func (p *pendingTx) Wait(ctx context.Context) error {
	_, err := p.ledger.WaitFinal(ctx, p.tx, p.confirmations, p.poll)
	return err
}
