package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertAll(ctx context.Context, owner string, list []models.DiaryEntry) error {
	start, err := r.Count(ctx, owner)
	if err != nil {
		return err
	}

	query := `INSERT INTO entries (owner, position, timestamp, weight_kg, steps, calories_in, calories_out, note)
			values (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, e := range list {
		_, err := r.db.ExecContext(ctx, query,
			owner, start+i, int64(e.Timestamp), e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) DeleteByOwner(ctx context.Context, owner string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// GetAll lists the owner's entries ordered by position.
func (r *SQLiteRepository) GetAll(ctx context.Context, owner string) ([]models.DiaryEntry, error) {
	query := `select timestamp, weight_kg, steps, calories_in, calories_out, note
			from entries where owner = ? order by position`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []models.DiaryEntry{}
	for rows.Next() {
		var (
			item models.DiaryEntry
			ts   int64
		)
		if err := rows.Scan(&ts, &item.WeightKg, &item.Steps, &item.CaloriesIn, &item.CaloriesOut, &item.Note); err != nil {
			return nil, err
		}
		item.Timestamp = uint64(ts)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, owner string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
