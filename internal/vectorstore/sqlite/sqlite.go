// Package sqlite stores the catalog in SQLite through the pure-Go modernc
// driver. Nearest-neighbor search orders by a registered cosine distance
// function over float32 BLOB embeddings.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"appsearch/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Storage is a SQLite-backed store.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open creates or opens the database at dsn (a file path or ":memory:").
//
// The pool holds a single connection, so concurrent inserts serialize and an
// in-memory database is shared by every call.
func Open(ctx context.Context, dsn string, dimension int, ensureSchema bool) (*Storage, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", distanceFunc, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if ensureSchema {
		if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &Storage{db: db, dimension: dimension}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// InsertApp stores an app and returns its id.
func (s *Storage) InsertApp(ctx context.Context, name, description string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO apps (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "insert app %s", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "id of app %s", name)
	}
	return id, nil
}

// InsertAction stores an action under an existing app.
func (s *Storage) InsertAction(ctx context.Context, rec domain.ActionRecord) (int64, error) {
	if len(rec.Embedding) != s.dimension {
		return 0, pkgerrors.Errorf("embedding has %d dimensions, expected %d", len(rec.Embedding), s.dimension)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (app_id, name, description, embedding, embedding_model) VALUES (?, ?, ?, ?, ?)`,
		rec.AppID, rec.Name, rec.Description, encodeEmbedding(rec.Embedding), rec.Model)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "insert action %s", rec.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "id of action %s", rec.Name)
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
       `+distanceFunc+`(actions.embedding, ?) AS distance
FROM actions
JOIN apps ON actions.app_id = apps.id
WHERE actions.embedding_model = ?
ORDER BY distance ASC
LIMIT 1`, encodeEmbedding(query), model)

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

// Close closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
