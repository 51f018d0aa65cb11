package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/config"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/client/services"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	session.Session

	mu        sync.Mutex
	committed []models.WireTuple
	addErr    error
	getErr    error
}

func (f *fakeSession) Available() bool { return true }
func (f *fakeSession) Identity() string { return "0x00000000000000000000000000000000000000bb" }

func (f *fakeSession) AddEntry(ctx context.Context, e models.WireEntry) (session.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.committed = append(f.committed, models.WireTuple{
		big.NewInt(1700000000 + int64(len(f.committed))), e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note,
	})
	return donePending("0xfeed"), nil
}

func (f *fakeSession) GetMyEntries(ctx context.Context) ([]models.WireTuple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]models.WireTuple(nil), f.committed...), nil
}

func (f *fakeSession) setGetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

type donePending string

func (p donePending) Hash() string { return string(p) }
func (p donePending) Wait(ctx context.Context) error { return nil }

// newTestApp wires real services over a temporary cache. Prompts read from
// input and everything printed is collected in the returned buffer.
func newTestApp(t *testing.T, sess session.Session, input string) (*App, *bytes.Buffer, *[]string) {
	t.Helper()
	color.NoColor = true

	db, err := repomanager.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	log := logging.Discard()
	cache := services.NewCache(db, repomanager.NewSQLiteRepositoryManager())
	store := services.NewStore()
	query := services.NewQueryService(store, cache, log)

	var out bytes.Buffer
	a := &App{
		config: cfg,
		log:    log,
		sess:   sess,
		store:  store,
		cache:  cache,
		query:  query,
		submit: services.NewSubmissionService(query, store, cache, log),
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
		mode:   ModeOffline,
	}
	return a, &out, capturePrints(t)
}

func TestApp_AddConfirmsInBackground(t *testing.T) {
	sess := &fakeSession{}
	a, out, lines := newTestApp(t, sess, "80\n10000\n2000\n2500\nmorning run\n")

	require.NoError(t, a.Add(context.Background()))
	a.confirmations.Wait()

	assert.Contains(t, out.String(), "Weight (kg): ")
	assert.Contains(t, out.String(), "Note (up to 200 characters, optional): ")

	joined := strings.Join(*lines, "\n")
	assert.Contains(t, joined, "Submitted 0xfeed")
	assert.Contains(t, joined, "Entry confirmed (tx 0xfeed).")

	v := a.store.View()
	require.Len(t, v.Entries, 1)
	assert.Equal(t, "morning run", v.Entries[0].Note)
	assert.Equal(t, uint32(10000), v.Entries[0].Steps)
}

func TestApp_AddInvalidInput(t *testing.T) {
	sess := &fakeSession{}
	a, _, lines := newTestApp(t, sess, "heavy\n1\n1\n1\n\n")

	err := a.Add(context.Background())
	require.ErrorIs(t, err, services.ErrInvalid)
	assert.Contains(t, strings.Join(*lines, "\n"), "Invalid weightKg")
	assert.Empty(t, sess.committed)
}

func TestApp_AddWithoutSigner(t *testing.T) {
	a, _, lines := newTestApp(t, nil, "80\n1\n1\n1\n\n")

	err := a.Add(context.Background())
	require.ErrorIs(t, err, services.ErrNoSigner)
	assert.Contains(t, strings.Join(*lines, "\n"), "No signing key available")
}

func TestApp_AddDeclined(t *testing.T) {
	sess := &fakeSession{addErr: session.ErrDeclined}
	a, _, lines := newTestApp(t, sess, "80\n1\n1\n1\n\n")

	err := a.Add(context.Background())
	require.ErrorIs(t, err, services.ErrRejected)
	assert.Contains(t, strings.Join(*lines, "\n"), "Submission cancelled")
}

func TestApp_ConfirmAuthorization(t *testing.T) {
	a, out, _ := newTestApp(t, &fakeSession{}, "y\nno\n")
	req := session.AuthorizationRequest{
		From:     "0xfrom",
		Contract: "0xcontract",
		Nonce:    3,
		Gas:      90000,
		Entry:    models.WireEntry{WeightKg: 80, Steps: 5, CaloriesIn: 1, CaloriesOut: 2, Note: "n"},
	}

	ok, err := a.confirmAuthorization(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "0xcontract")
	assert.Contains(t, out.String(), "90000")
	assert.Contains(t, out.String(), "Sign and send this transaction? [y/N]: ")

	ok, err = a.confirmAuthorization(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApp_ListAndFallbackToStale(t *testing.T) {
	sess := &fakeSession{committed: []models.WireTuple{
		{big.NewInt(1700000000), uint16(72), uint32(8000), uint16(1800), uint16(2100), "first"},
	}}
	a, out, lines := newTestApp(t, sess, "")

	require.NoError(t, a.List(context.Background()))
	assert.Equal(t, ModeOnline, a.getMode())
	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "1 entry")

	out.Reset()
	sess.setGetErr(errors.New("connection refused"))
	require.NoError(t, a.List(context.Background()))
	assert.Equal(t, ModeOffline, a.getMode())
	assert.Contains(t, strings.Join(*lines, "\n"), "Could not read from the ledger")
	assert.Contains(t, out.String(), "first", "last known entries are still shown")
}

func TestApp_ListWithoutSigner(t *testing.T) {
	a, out, lines := newTestApp(t, nil, "")

	err := a.List(context.Background())
	require.ErrorIs(t, err, services.ErrNoSigner)
	assert.Contains(t, strings.Join(*lines, "\n"), "No signing key available")
	assert.Empty(t, out.String())
}

func TestApp_ShowEmpty(t *testing.T) {
	a, out, _ := newTestApp(t, &fakeSession{}, "")

	require.NoError(t, a.Show(context.Background()))
	assert.Contains(t, out.String(), "no entries")
}

func TestApp_Status(t *testing.T) {
	sess := &fakeSession{}
	a, out, _ := newTestApp(t, sess, "")

	require.NoError(t, a.Status(context.Background()))
	s := out.String()
	assert.Contains(t, s, sess.Identity())
	assert.Contains(t, s, "offline")
	assert.Contains(t, s, "never")
	assert.Contains(t, s, "Cached entries")

	out.Reset()
	b, out2, _ := newTestApp(t, nil, "")
	require.NoError(t, b.Status(context.Background()))
	assert.Contains(t, out2.String(), "none")
	assert.NotContains(t, out2.String(), "Cached entries")
}

func TestApp_PrimeLoadsCacheThenRefreshes(t *testing.T) {
	sess := &fakeSession{committed: []models.WireTuple{
		{big.NewInt(1700000000), uint16(70), uint32(1), uint16(1), uint16(1), "cached"},
	}}
	a, _, _ := newTestApp(t, sess, "")
	_, err := a.query.Refresh(context.Background(), sess)
	require.NoError(t, err)

	fresh := services.NewStore()
	a.store = fresh
	a.query = services.NewQueryService(fresh, a.cache, a.log)
	sess.setGetErr(errors.New("down"))

	a.prime(context.Background())

	v := fresh.View()
	require.Len(t, v.Entries, 1)
	assert.True(t, v.Cached)
	assert.Equal(t, ModeOffline, a.getMode())
}

func TestApp_SetModeLogsOnlyOnChange(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New("info", &buf)
	require.NoError(t, err)
	a := &App{log: log, mode: ModeOffline}

	a.setMode(ModeOffline)
	assert.Empty(t, buf.String())

	a.setMode(ModeOnline)
	assert.Contains(t, buf.String(), "connectivity changed")
	assert.Equal(t, ModeOnline, a.getMode())
}

func TestApp_GetStatus(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeSession{}, "")
	assert.Equal(t, "(0x0000…00bb offline)", a.getStatus())

	b, _, _ := newTestApp(t, nil, "")
	assert.Equal(t, "(offline)", b.getStatus())
}

type flakyNode struct{ down atomic.Bool }

func (n *flakyNode) Ping(ctx context.Context) error {
	if n.down.Load() {
		return errors.New("no route to host")
	}
	return nil
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	node := &flakyNode{}
	a := &App{log: logging.Discard(), node: node, mode: ModeOffline}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return a.getMode() == ModeOnline }, time.Second, 5*time.Millisecond)
	node.down.Store(true)
	assert.Eventually(t, func() bool { return a.getMode() == ModeOffline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestApp_CloseRunsClosersInReverse(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	a := &App{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
		func() error { order = append(order, 3); return nil },
	}}

	require.ErrorIs(t, a.Close(), boom)
	assert.Equal(t, []int{3, 2, 1}, order)
	require.NoError(t, a.Close(), "second close is a no-op")
}

func TestApp_StatusShowsUnresolvedTx(t *testing.T) {
	sess := &fakeSession{}
	a, out, _ := newTestApp(t, sess, "")
	require.NoError(t, a.cache.RecordTx(context.Background(), sess.Identity(), "0xdead"))

	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "Unresolved tx")
	assert.Contains(t, out.String(), "0xdead")

	out.Reset()
	require.NoError(t, a.cache.ResolveTx(context.Background(), sess.Identity()))
	require.NoError(t, a.Status(context.Background()))
	assert.NotContains(t, out.String(), "Unresolved tx")
}
