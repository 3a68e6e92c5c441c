package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
)

const DefaultSnapshotID = "default"

// SQLStore keeps the document as one JSONB row in topology_snapshots. It
// works with any database/sql Postgres driver (pgx stdlib or lib/pq).
type SQLStore struct {
	db *sql.DB
	id string
}

// NewSQLStore creates a SQLStore for the snapshot row id. An empty id uses
// DefaultSnapshotID.
func NewSQLStore(db *sql.DB, id string) *SQLStore {
	if id == "" {
		id = DefaultSnapshotID
	}
	return &SQLStore{db: db, id: id}
}

func (s *SQLStore) Name() string { return "postgres" }

// EnsureSchema creates the snapshot table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS topology_snapshots (
  id         text PRIMARY KEY,
  document   jsonb NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
);`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return domain.StoreUnavailable("ensure schema", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (*domain.Document, error) {
	data, err := s.selectDocument(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return s.initialize(ctx)
	}
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}
	return doc, nil
}

func (s *SQLStore) initialize(ctx context.Context) (*domain.Document, error) {
	empty, err := encodeDocument(domain.NewDocument())
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", err)
	}

	const q = `
INSERT INTO topology_snapshots (id, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO NOTHING;`
	if _, err := s.db.ExecContext(ctx, q, s.id, empty); err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", fmt.Errorf("failed to insert snapshot: %w", err))
	}

	data, err := s.selectDocument(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("initialize snapshot", err)
	}
	return doc, nil
}

func (s *SQLStore) selectDocument(ctx context.Context) ([]byte, error) {
	const q = `SELECT document FROM topology_snapshots WHERE id = $1`

	var data []byte
	if err := s.db.QueryRowContext(ctx, q, s.id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}
	return data, nil
}

// Replace upserts the row in a single statement.
func (s *SQLStore) Replace(ctx context.Context, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}

	const q = `
INSERT INTO topology_snapshots (id, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE
  SET document = EXCLUDED.document,
      updated_at = now();`
	if _, err := s.db.ExecContext(ctx, q, s.id, data); err != nil {
		return domain.StoreUnavailable("replace snapshot", fmt.Errorf("failed to upsert snapshot: %w", err))
	}
	return nil
}
