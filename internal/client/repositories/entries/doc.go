// Package entries provides the local cache of decoded diary records.
//
// The cache holds one snapshot per owner: the full record set returned by the
// last successful ledger read, in ledger order. Snapshots are replaced as a
// whole and never edited in place, mirroring the append-only ledger.
//
// A SQLite implementation (SQLiteRepository) runs over a dbx.DBTX, so the
// same repository works on a *sql.DB or inside dbx.WithTx.
//
// Typical Usage
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := entries.NewSQLiteRepository(tx)
//	    if err := repo.DeleteByOwner(ctx, owner); err != nil {
//	        return err
//	    }
//	    return repo.InsertAll(ctx, owner, list)
//	})
package entries
