package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/codec"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

// QueryService reads the caller's records from the ledger into the Store.
type QueryService struct {
	store *Store
	cache *Cache
	log   logging.Logger
	now   func() time.Time

	// cacheMu orders snapshot writes so the newest read is written last.
	cacheMu sync.Mutex
}

func NewQueryService(store *Store, cache *Cache, log logging.Logger) *QueryService {
	return &QueryService{store: store, cache: cache, log: log, now: time.Now}
}

// Refresh fetches every record authored by sess, decodes them in ledger
// order and publishes them to the Store. On failure the Store keeps its
// previous entries and records the error.
//
// Reads may overlap. A read that started before one whose result is already
// published does not overwrite it; the current entries are returned instead.
func (q *QueryService) Refresh(ctx context.Context, sess session.Session) ([]models.DiaryEntry, error) {
	if !session.Available(sess) {
		err := &QueryError{Kind: ErrNoSigner}
		q.store.setError(err)
		return nil, err
	}

	gen := q.store.beginRead()
	tuples, err := sess.GetMyEntries(ctx)
	if err != nil {
		qe := &QueryError{Kind: ErrUnreachable, Cause: err}
		q.store.failRead(gen, qe)
		q.log.Warn(ctx, "refresh failed", "identity", sess.Identity(), "error", err)
		return nil, qe
	}

	list := make([]models.DiaryEntry, 0, len(tuples))
	for _, t := range tuples {
		list = append(list, codec.Decode(t))
	}

	at := q.now()
	if !q.store.replaceEntries(gen, list, at) {
		q.log.Debug(ctx, "dropped superseded read", "identity", sess.Identity(), "generation", gen)
		return q.store.View().Entries, nil
	}
	q.log.Debug(ctx, "refreshed", "identity", sess.Identity(), "entries", len(list))

	q.writeSnapshot(ctx, gen, sess.Identity(), list, at)
	return list, nil
}

func (q *QueryService) writeSnapshot(ctx context.Context, gen uint64, owner string, list []models.DiaryEntry, at time.Time) {
	q.cacheMu.Lock()
	defer q.cacheMu.Unlock()
	if !q.store.isLatest(gen) {
		return
	}
	if err := q.cache.ReplaceSnapshot(ctx, owner, list, at); err != nil {
		q.log.Warn(ctx, "cache write failed", "identity", owner, "error", err)
	}
}

// LoadCached primes an empty Store with owner's cached snapshot. It
// reports whether anything was loaded.
func (q *QueryService) LoadCached(ctx context.Context, owner string) (bool, error) {
	list, at, err := q.cache.Load(ctx, owner)
	if err != nil {
		return false, err
	}
	if len(list) == 0 {
		return false, nil
	}
	return q.store.prime(list, at), nil
}
