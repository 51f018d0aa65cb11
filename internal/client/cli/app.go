package cli

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/config"
	"github.com/dmitrijs2005/gophdiary/internal/client/ledger"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/client/services"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/filex"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger reports whether the ledger node answers.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	log    logging.Logger

	node   pinger
	sess   session.Session
	store  *services.Store
	cache  *services.Cache
	query  *services.QueryService
	submit *services.SubmissionService

	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode

	// confirmations tracks background Await calls.
	confirmations sync.WaitGroup
	closers       []func() error
}

// NewApp opens the local cache, dials the ledger node and, when a key is
// configured, unlocks the signer session. Without a key the app still
// starts but every ledger command reports that no signer is available.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := repomanager.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("local cache: %w", err)
	}

	rpc, err := ledger.Dial(ctx, c.RPCURL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	contract, err := ledger.NewContract(ethcommon.HexToAddress(c.ContractAddress), rpc)
	if err != nil {
		rpc.Close()
		_ = db.Close()
		return nil, err
	}

	cache := services.NewCache(db, repomanager.NewSQLiteRepositoryManager())
	store := services.NewStore()
	query := services.NewQueryService(store, cache, log)

	a := &App{
		config: c,
		log:    log,
		node:   contract,
		store:  store,
		cache:  cache,
		query:  query,
		submit: services.NewSubmissionService(query, store, cache, log),
		reader: bufio.NewReader(os.Stdin),
		out:    color.Output,
		mode:   ModeOffline,
		closers: []func() error{
			db.Close,
			func() error { rpc.Close(); return nil },
		},
	}

	key, err := a.loadKey()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if key == nil {
		log.Warn(ctx, "no signing key configured", "hint", "set "+config.EnvPrivateKey+" or pass -s <keystore>")
		return a, nil
	}

	chainID := big.NewInt(c.ChainID)
	if c.ChainID == 0 {
		if chainID, err = contract.ChainID(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("resolve chain id (set %s to skip): %w", config.EnvChainID, err)
		}
	}

	w, err := session.NewWallet(contract, key, chainID,
		session.WithAuthorizer(a.confirmAuthorization),
		session.WithConfirmations(c.Confirmations),
		session.WithPollInterval(c.PollInterval),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.sess = w
	a.closers = append(a.closers, func() error { w.Close(); return nil })

	log.Info(ctx, "signer ready", "identity", w.Identity(), "chain_id", chainID)
	return a, nil
}

// loadKey returns nil, nil when neither a private key nor a keystore is
// configured.
func (a *App) loadKey() (*ecdsa.PrivateKey, error) {
	if a.config.PrivateKey != "" {
		return session.KeyFromHex(a.config.PrivateKey)
	}
	if a.config.KeystorePath == "" {
		return nil, nil
	}

	path, err := filex.ExpandHome(a.config.KeystorePath)
	if err != nil {
		return nil, err
	}
	pass, err := GetPassword("Keystore passphrase", a.out)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	defer common.WipeByteArray(pass)

	return session.KeyFromKeystore(path, pass)
}

// Run starts the online watcher and the REPL. When the REPL ends it
// abandons outstanding confirmations and waits for them to report.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.confirmations.Wait()
	}()

	printlnFn("Health diary (type 'help' for commands)")
	a.prime(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the session, the node connection and the database.
func (a *App) Close() error {
	var first error
	for _, c := range slices.Backward(a.closers) {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// prime shows cached entries at once, then tries a live read.
func (a *App) prime(ctx context.Context) {
	if !a.hasSigner() {
		return
	}
	id := a.sess.Identity()

	if ok, err := a.query.LoadCached(ctx, id); err != nil {
		a.log.Warn(ctx, "loading cache failed", "error", err)
	} else if ok {
		printlnFn(fmt.Sprintf("Loaded %d cached entries.", len(a.store.View().Entries)))
	}

	rctx, cancel := context.WithTimeout(ctx, a.config.OnlineCheckInterval)
	defer cancel()
	if _, err := a.query.Refresh(rctx, a.sess); err != nil {
		printlnFn(warnText("Ledger not reachable, showing cached entries."))
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) hasSigner() bool {
	return session.Available(a.sess)
}

func (a *App) getMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	s := string(a.getMode())
	if a.hasSigner() {
		s = shortID(a.sess.Identity()) + " " + s
	}
	if a.store.View().Pending {
		s += " pending"
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the node every interval until ctx ends and
// flips the mode accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.node.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:6] + "…" + id[len(id)-4:]
}
