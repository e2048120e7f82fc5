// Package postgres stores the catalog in PostgreSQL with the pgvector
// extension and answers nearest-neighbor queries with the <=> cosine
// distance operator.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	pkgerrors "github.com/pkg/errors"

	"appsearch/internal/domain"
)

// Storage is a PostgreSQL-backed store.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open connects to dsn. When ensureSchema is set, the vector extension and
// both tables are created if missing.
func Open(ctx context.Context, dsn string, dimension int, ensureSchema bool) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("postgres: connection string is empty")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if ensureSchema {
		if err := applySchema(ctx, db, dimension); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &Storage{db: db, dimension: dimension}, nil
}

func schemaStatements(dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS apps (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL
)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS actions (
    id              BIGSERIAL PRIMARY KEY,
    app_id          BIGINT NOT NULL REFERENCES apps(id),
    name            TEXT NOT NULL,
    description     TEXT NOT NULL,
    embedding       vector(%d) NOT NULL,
    embedding_model TEXT NOT NULL
)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_actions_app_id ON actions(app_id)`,
	}
}

func applySchema(ctx context.Context, db *sql.DB, dimension int) error {
	for _, stmt := range schemaStatements(dimension) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return pkgerrors.Wrapf(err, "execute %.40q", stmt)
		}
	}
	return nil
}

// InsertApp stores an app and returns its id.
func (s *Storage) InsertApp(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO apps (name, description) VALUES ($1, $2) RETURNING id`,
		name, description).Scan(&id)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "insert app %s", name)
	}
	return id, nil
}

// InsertAction stores an action under an existing app.
func (s *Storage) InsertAction(ctx context.Context, rec domain.ActionRecord) (int64, error) {
	if len(rec.Embedding) != s.dimension {
		return 0, pkgerrors.Errorf("embedding has %d dimensions, expected %d", len(rec.Embedding), s.dimension)
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO actions (app_id, name, description, embedding, embedding_model)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.AppID, rec.Name, rec.Description, pgvector.NewVector(rec.Embedding), rec.Model).Scan(&id)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "insert action %s", rec.Name)
	}
	return id, nil
}

// Nearest returns the action with the smallest cosine distance to query among
// rows embedded by model.
func (s *Storage) Nearest(ctx context.Context, query []float32, model string) (domain.Match, error) {
	if len(query) != s.dimension {
		return domain.Match{}, pkgerrors.Errorf("query has %d dimensions, expected %d", len(query), s.dimension)
	}
	row := s.db.QueryRowContext(ctx, `
SELECT apps.id, apps.name, actions.id, actions.name, actions.description,
       actions.embedding <=> $1::vector AS distance
FROM actions
JOIN apps ON actions.app_id = apps.id
WHERE actions.embedding_model = $2
ORDER BY distance ASC
LIMIT 1`, pgvector.NewVector(query), model)

	var m domain.Match
	err := row.Scan(&m.AppID, &m.AppName, &m.ActionID, &m.ActionName, &m.ActionDescription, &m.Distance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Match{}, &domain.Error{Kind: domain.KindNoMatch, Op: "nearest action"}
	}
	if err != nil {
		return domain.Match{}, pkgerrors.Wrap(err, "query nearest action")
	}
	return m, nil
}

// CountActions returns the number of stored actions.
func (s *Storage) CountActions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, pkgerrors.Wrap(err, "count actions")
	}
	return n, nil
}

// Close closes the connection pool.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
