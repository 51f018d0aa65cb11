package services

import (
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// View is a point-in-time copy of the client state.
type View struct {
	Entries     []models.DiaryEntry
	Pending     bool
	PendingTx   string
	LastErr     error
	RefreshedAt time.Time
	// Cached is true while Entries come from the local cache rather than
	// a ledger read made by this process.
	Cached bool
}

// Store holds the entries shown to the user. Only the services mutate it;
// entries change only through a ledger read.
type Store struct {
	mu          sync.RWMutex
	entries     []models.DiaryEntry
	pending     bool
	pendingTx   string
	lastErr     error
	refreshedAt time.Time
	cached      bool

	// issued numbers ledger reads as they start; applied is the newest
	// read whose result is in entries.
	issued  uint64
	applied uint64
}

func NewStore() *Store {
	return &Store{entries: []models.DiaryEntry{}}
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Entries:     slices.Clone(s.entries),
		Pending:     s.pending,
		PendingTx:   s.pendingTx,
		LastErr:     s.lastErr,
		RefreshedAt: s.refreshedAt,
		Cached:      s.cached,
	}
}

func (s *Store) setPending(tx string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = true
	s.pendingTx = tx
}

func (s *Store) clearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	s.pendingTx = ""
}

// beginRead returns the generation of a ledger read about to start.
func (s *Store) beginRead() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// replaceEntries publishes the result of read gen. A result older than one
// already applied is dropped and false is returned.
func (s *Store) replaceEntries(gen uint64, list []models.DiaryEntry, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied {
		return false
	}
	s.applied = gen
	s.entries = slices.Clone(list)
	s.refreshedAt = at
	s.lastErr = nil
	s.cached = false
	return true
}

// isLatest reports whether read gen produced the entries now held.
func (s *Store) isLatest(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied == gen
}

// failRead records err for read gen unless a newer read already succeeded.
func (s *Store) failRead(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		return
	}
	s.lastErr = err
}

// prime installs cached entries unless a ledger read already happened.
func (s *Store) prime(list []models.DiaryEntry, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshedAt.IsZero() || len(s.entries) > 0 {
		return false
	}
	s.entries = slices.Clone(list)
	s.refreshedAt = at
	s.cached = true
	return true
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
