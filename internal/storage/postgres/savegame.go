package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tale/internal/savegame"
)

// SavegameRepository implements savegame.Store for MUD accounts. Each
// account has at most one savegame, keyed by the account name.
type SavegameRepository struct {
	db *pgxpool.Pool
}

// NewSavegameRepository creates a SavegameRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSavegameRepository(db *pgxpool.Pool) *SavegameRepository {
	return &SavegameRepository{db: db}
}

// Save upserts the savegame of name.
func (r *SavegameRepository) Save(ctx context.Context, name string, s *savegame.Snapshot) error {
	data, err := savegame.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO savegames (name, story, snapshot, saved_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (name) DO UPDATE
		 SET story = EXCLUDED.story, snapshot = EXCLUDED.snapshot, saved_at = EXCLUDED.saved_at`,
		name, s.Story, data,
	)
	if err != nil {
		return fmt.Errorf("saving game of %s: %w", name, err)
	}
	return nil
}

// Load returns the savegame of name or savegame.ErrSavegameNotFound.
func (r *SavegameRepository) Load(ctx context.Context, name string) (*savegame.Snapshot, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT snapshot FROM savegames WHERE name = $1`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, savegame.ErrSavegameNotFound
		}
		return nil, fmt.Errorf("loading game of %s: %w", name, err)
	}
	return savegame.Unmarshal(data)
}

// Delete removes the savegame of name, if any.
func (r *SavegameRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM savegames WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting game of %s: %w", name, err)
	}
	return nil
}

var _ savegame.Store = (*SavegameRepository)(nil)
