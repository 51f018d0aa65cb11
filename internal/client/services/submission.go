package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophdiary/internal/client/codec"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/google/uuid"
)

// SubmissionService drives one entry from form input to a confirmed ledger
// record: validate, encode, authorize and broadcast, await finality, then
// refresh the Store.
type SubmissionService struct {
	query *QueryService
	store *Store
	cache *Cache
	log   logging.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmissionService(query *QueryService, store *Store, cache *Cache, log logging.Logger) *SubmissionService {
	return &SubmissionService{
		query:    query,
		store:    store,
		cache:    cache,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

// Ticket tracks a broadcast submission until it is final.
type Ticket struct {
	ID     string
	Entry  models.DiaryEntry
	TxHash string

	svc      *SubmissionService
	sess     session.Session
	pending  session.Pending
	identity string
	log      logging.Logger

	once sync.Once
	err  error
}

// Submit runs the whole lifecycle and blocks until the entry is final and
// the Store has been refreshed, or ctx ends.
func (s *SubmissionService) Submit(ctx context.Context, form models.RawForm, sess session.Session) (*Ticket, error) {
	t, err := s.Begin(ctx, form, sess)
	if err != nil {
		return nil, err
	}
	return t, t.Await(ctx)
}

// Begin validates the form and broadcasts it through sess. Nothing reaches
// the ledger unless it returns a Ticket; the caller must then call Await.
func (s *SubmissionService) Begin(ctx context.Context, form models.RawForm, sess session.Session) (*Ticket, error) {
	if !session.Available(sess) {
		return nil, &SubmissionError{Kind: ErrNoSigner}
	}

	entry, err := codec.Encode(form)
	if err != nil {
		var ve *codec.ValidationError
		errors.As(err, &ve)
		return nil, &SubmissionError{Kind: ErrInvalid, Validation: ve, Cause: err}
	}

	identity := sess.Identity()
	if !s.acquire(identity) {
		return nil, &SubmissionError{Kind: ErrAlreadyPending}
	}

	id := uuid.NewString()
	log := s.log.With("submission_id", id, "identity", identity)

	pending, err := sess.AddEntry(ctx, codec.WireOf(entry))
	if err != nil {
		s.release(identity)
		if errors.Is(err, session.ErrDeclined) {
			log.Info(ctx, "submission declined")
			return nil, &SubmissionError{Kind: ErrRejected, Cause: err}
		}
		log.Error(ctx, "broadcast failed", "error", err)
		return nil, &SubmissionError{Kind: ErrLedgerFailure, Cause: err}
	}

	hash := pending.Hash()
	s.store.setPending(hash)
	log.Info(ctx, "entry broadcast", "tx", hash)

	if err := s.cache.RecordTx(ctx, identity, hash); err != nil {
		log.Warn(ctx, "recording tx failed", "error", err)
	}

	return &Ticket{
		ID:       id,
		Entry:    entry,
		TxHash:   hash,
		svc:      s,
		sess:     sess,
		pending:  pending,
		identity: identity,
		log:      log,
	}, nil
}

// Await blocks until the transaction is final, then refreshes the Store.
// A refresh failure after a confirmed commit is recorded in the Store but
// does not fail the submission. Later calls return the first result.
//
// If ctx ends first, Await returns ErrAbandoned and frees the identity's
// in-flight slot although the transaction may still commit; a Begin issued
// after that is not ordered against it. The hash stays recorded as the
// owner's unresolved transaction in the cache (CacheStatus.PendingTx) until
// the next submission from the same identity replaces it.
func (t *Ticket) Await(ctx context.Context) error {
	t.once.Do(func() {
		defer t.svc.release(t.identity)
		defer t.svc.store.clearPending()
		t.err = t.await(ctx)
	})
	return t.err
}

func (t *Ticket) await(ctx context.Context) error {
	if err := t.pending.Wait(ctx); err != nil {
		kind := ErrLedgerFailure
		if ctx.Err() != nil {
			kind = ErrAbandoned
		}
		se := &SubmissionError{Kind: kind, TxHash: t.TxHash, Cause: err}
		t.svc.store.setError(se)
		if kind == ErrAbandoned {
			t.log.Warn(ctx, "stopped waiting for confirmation", "tx", t.TxHash)
			return se
		}
		t.log.Error(ctx, "confirmation failed", "tx", t.TxHash, "error", err)
		t.resolve(ctx)
		return se
	}

	t.log.Info(ctx, "entry final", "tx", t.TxHash)
	t.resolve(ctx)

	if _, err := t.svc.query.Refresh(ctx, t.sess); err != nil {
		t.log.Warn(ctx, "refresh after commit failed", "error", err)
	}
	return nil
}

func (t *Ticket) resolve(ctx context.Context) {
	if err := t.svc.cache.ResolveTx(ctx, t.identity); err != nil {
		t.log.Warn(ctx, "clearing pending tx failed", "error", err)
	}
}

// InFlight reports whether identity has a submission awaiting finality.
func (s *SubmissionService) InFlight(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[identity]
	return ok
}

func (s *SubmissionService) acquire(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[identity]; busy {
		return false
	}
	s.inFlight[identity] = struct{}{}
	return true
}

func (s *SubmissionService) release(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, identity)
}
