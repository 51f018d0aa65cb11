package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeLedgerSession stands in for a signer session over an in-memory ledger.
// Entries become visible to GetMyEntries only when their pending operation
// is released.
type fakeLedgerSession struct {
	session.Session

	mu        sync.Mutex
	available bool
	identity  string
	committed []models.WireTuple
	nextTs    uint64

	addErr   error
	getErr   error
	waitErr  error
	hold     bool
	addCalls int
	getCalls int
	last     *fakePending

	// slowRead, when set, makes the next GetMyEntries take its snapshot,
	// close readTaken and block until slowRead is closed.
	slowRead  chan struct{}
	readTaken chan struct{}
}

func newFakeSession() *fakeLedgerSession {
	return &fakeLedgerSession{available: true, identity: "0x00000000000000000000000000000000000000aa", nextTs: 1700000000}
}

func (f *fakeLedgerSession) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeLedgerSession) Identity() string { return f.identity }

func (f *fakeLedgerSession) AddEntry(ctx context.Context, e models.WireEntry) (session.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.addErr != nil {
		return nil, f.addErr
	}
	p := &fakePending{
		hash:    "0xtx" + string(rune('0'+f.addCalls)),
		entry:   e,
		owner:   f,
		release: make(chan struct{}),
		waitErr: f.waitErr,
	}
	if !f.hold {
		close(p.release)
	}
	f.last = p
	return p, nil
}

func (f *fakeLedgerSession) GetMyEntries(ctx context.Context) ([]models.WireTuple, error) {
	f.mu.Lock()
	f.getCalls++
	if f.getErr != nil {
		f.mu.Unlock()
		return nil, f.getErr
	}
	out := make([]models.WireTuple, len(f.committed))
	copy(out, f.committed)
	gate, taken := f.slowRead, f.readTaken
	f.slowRead, f.readTaken = nil, nil
	f.mu.Unlock()

	if gate != nil {
		close(taken)
		<-gate
	}
	return out, nil
}

// holdNextRead arranges for the next read to stall after taking its
// snapshot. The returned channel is closed once the snapshot is taken.
func (f *fakeLedgerSession) holdNextRead(gate chan struct{}) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slowRead = gate
	f.readTaken = make(chan struct{})
	return f.readTaken
}

func (f *fakeLedgerSession) commit(e models.WireEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTs++
	f.committed = append(f.committed, models.WireTuple{f.nextTs, e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note})
}

func (f *fakeLedgerSession) counts() (add, get int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addCalls, f.getCalls
}

type fakePending struct {
	hash    string
	entry   models.WireEntry
	owner   *fakeLedgerSession
	release chan struct{}
	waitErr error
	once    sync.Once
}

func (p *fakePending) Hash() string { return p.hash }

func (p *fakePending) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.release:
	}
	if p.waitErr != nil {
		return p.waitErr
	}
	p.once.Do(func() { p.owner.commit(p.entry) })
	return nil
}

func (p *fakePending) finalize() { close(p.release) }

func validForm() models.RawForm {
	return models.RawForm{WeightKg: "80", Steps: "10000", CaloriesIn: "2000", CaloriesOut: "2500", Note: "ok"}
}

func openCache(t *testing.T) (*Cache, *sql.DB) {
	t.Helper()
	db, err := repomanager.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCache(db, repomanager.NewSQLiteRepositoryManager()), db
}

type harness struct {
	store  *Store
	cache  *Cache
	query  *QueryService
	submit *SubmissionService
}

func newHarness(t *testing.T, withCache bool) *harness {
	t.Helper()
	var cache *Cache
	if withCache {
		cache, _ = openCache(t)
	}
	store := NewStore()
	log := logging.Discard()
	q := NewQueryService(store, cache, log)
	return &harness{
		store:  store,
		cache:  cache,
		query:  q,
		submit: NewSubmissionService(q, store, cache, log),
	}
}
