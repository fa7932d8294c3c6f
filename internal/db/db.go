package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"SheetServe/internal/store"
)

// Store keeps every uploaded workbook as a revision; the newest one is current.
type Store struct {
	Pool *pgxpool.Pool

	// Keep bounds how many revisions survive a save; zero keeps all.
	Keep int
}

var _ store.WorkbookStore = (*Store)(nil)

func New(ctx context.Context, conn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS workbooks (
		     revision   UUID PRIMARY KEY,
		     filename   TEXT NOT NULL,
		     content    BYTEA NOT NULL,
		     created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
	); err != nil {
		return err
	}

	_, err := s.Pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS workbooks_created_at_idx
		 ON workbooks (created_at DESC)`,
	)
	return err
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	store.Prepare(&snap)

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO workbooks (revision, filename, content, created_at)
		 VALUES ($1,$2,$3,$4)`,
		snap.Revision,
		snap.Filename,
		snap.Data,
		snap.SavedAt,
	)
	if err != nil || s.Keep <= 0 {
		return err
	}

	_, err = s.Prune(ctx, s.Keep)
	return err
}

func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	var snap store.Snapshot

	err := s.Pool.QueryRow(ctx,
		`SELECT revision, filename, content, created_at
		 FROM workbooks
		 ORDER BY created_at DESC
		 LIMIT 1`,
	).Scan(&snap.Revision, &snap.Filename, &snap.Data, &snap.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// Prune deletes all but the newest keep revisions.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM workbooks
		 WHERE revision NOT IN (
		     SELECT revision FROM workbooks ORDER BY created_at DESC LIMIT $1
		 )`,
		keep,
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
