package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
)

// Cache persists the last good ledger read and submission bookkeeping in
// the local SQLite database. A nil *Cache disables persistence.
type Cache struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewCache(db *sql.DB, repos repomanager.RepositoryManager) *Cache {
	return &Cache{db: db, repos: repos}
}

// CacheStatus is the bookkeeping stored for one owner. PendingTx is a
// broadcast whose outcome this client never observed, for example because it
// exited while waiting; it may have committed.
type CacheStatus struct {
	Entries     int
	LastTx      string
	PendingTx   string
	RefreshedAt time.Time
}

// ReplaceSnapshot swaps the owner's cached entries for list and stamps the
// refresh time, all in one transaction.
func (c *Cache) ReplaceSnapshot(ctx context.Context, owner string, list []models.DiaryEntry, at time.Time) error {
	if c == nil {
		return nil
	}
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repos.Entries(tx)
		if err := repo.DeleteByOwner(ctx, owner); err != nil {
			return err
		}
		if err := repo.InsertAll(ctx, owner, list); err != nil {
			return err
		}
		return c.repos.Metadata(tx).SetTime(ctx, metadata.RefreshedAtKey(owner), at)
	})
}

// Load returns the owner's cached entries and when they were read.
func (c *Cache) Load(ctx context.Context, owner string) ([]models.DiaryEntry, time.Time, error) {
	if c == nil {
		return nil, time.Time{}, nil
	}
	list, err := c.repos.Entries(c.db).GetAll(ctx, owner)
	if err != nil {
		return nil, time.Time{}, err
	}
	at, err := c.repos.Metadata(c.db).GetTime(ctx, metadata.RefreshedAtKey(owner))
	if err != nil {
		return nil, time.Time{}, err
	}
	return list, at, nil
}

// RecordTx stores hash as the owner's last broadcast and marks it
// unresolved until ResolveTx is called.
func (c *Cache) RecordTx(ctx context.Context, owner, hash string) error {
	if c == nil {
		return nil
	}
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repos.Metadata(tx)
		if err := repo.Set(ctx, metadata.LastTxKey(owner), []byte(hash)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.PendingTxKey(owner), []byte(hash))
	})
}

// ResolveTx clears the owner's unresolved transaction marker.
func (c *Cache) ResolveTx(ctx context.Context, owner string) error {
	if c == nil {
		return nil
	}
	return c.repos.Metadata(c.db).Delete(ctx, metadata.PendingTxKey(owner))
}

func (c *Cache) Status(ctx context.Context, owner string) (CacheStatus, error) {
	var st CacheStatus
	if c == nil {
		return st, nil
	}

	n, err := c.repos.Entries(c.db).Count(ctx, owner)
	if err != nil {
		return st, err
	}
	st.Entries = n

	meta, err := c.repos.Metadata(c.db).ListOwner(ctx, owner)
	if err != nil {
		return st, err
	}
	st.LastTx = string(meta[metadata.KeyLastTx])
	st.PendingTx = string(meta[metadata.KeyPendingTx])
	st.RefreshedAt, err = metadata.ParseTime(meta[metadata.KeyRefreshedAt])
	return st, err
}
