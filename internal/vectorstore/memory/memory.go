// Package memory keeps the catalog in process: apps in a map and actions in a
// chromem-go collection queried with precomputed embeddings.
package memory

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/philippgille/chromem-go"
	"github.com/pkg/errors"

	"appsearch/internal/domain"
)

const (
	collectionName = "actions"
	metaAppID      = "app_id"
	metaName       = "name"
	metaModel      = "model"
)

type appRow struct {
	name        string
	description string
}

// Storage is an in-memory store. Cosine distance is 1 - chromem similarity.
type Storage struct {
	dimension int
	actions   *chromem.Collection

	mu   sync.RWMutex
	apps map[int64]appRow

	nextAppID    atomic.Int64
	nextActionID atomic.Int64
}

// NewStorage creates an empty store for vectors of the given dimension.
func NewStorage(dimension int) (*Storage, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	db := chromem.NewDB()
	// embeddings are always supplied by the caller
	noEmbed := func(context.Context, string) ([]float32, error) {
		return nil, errors.New("memory store does not compute embeddings")
	}
	col, err := db.CreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return nil, errors.Wrap(err, "create actions collection")
	}
	return &Storage{dimension: dimension, actions: col, apps: make(map[int64]appRow)}, nil
}

// InsertApp stores an app and returns its id.
func (s *Storage) InsertApp(ctx context.Context, name, description string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id := s.nextAppID.Add(1)
	s.mu.Lock()
	s.apps[id] = appRow{name: name, description: description}
	s.mu.Unlock()
	return id, nil
}

// InsertAction stores an action under an existing app.
func (s *Storage) InsertAction(ctx context.Context, rec domain.ActionRecord) (int64, error) {
	if len(rec.Embedding) != s.dimension {
		return 0, errors.Errorf("embedding has %d dimensions, expected %d", len(rec.Embedding), s.dimension)
	}
	s.mu.RLock()
	_, ok := s.apps[rec.AppID]
	s.mu.RUnlock()
	if !ok {
		return 0, errors.Errorf("app %d does not exist", rec.AppID)
	}

	id := s.nextActionID.Add(1)
	// chromem normalizes in place
	embedding := append([]float32(nil), rec.Embedding...)
	err := s.actions.AddDocument(ctx, chromem.Document{
		ID:        strconv.FormatInt(id, 10),
		Content:   rec.Description,
		Embedding: embedding,
		Metadata: map[string]string{
			metaAppID: strconv.FormatInt(rec.AppID, 10),
			metaName:  rec.Name,
			metaModel: rec.Model,
		},
	})
	if err != nil {
		return 0, errors.Wrapf(err, "add action %s", rec.Name)
	}
	return id, nil
}

// Nearest returns the action closest to query among rows embedded by model.
func (s *Storage) Nearest(ctx context.Context, query []float32, model string) (domain.Match, error) {
	if len(query) != s.dimension {
		return domain.Match{}, errors.Errorf("query has %d dimensions, expected %d", len(query), s.dimension)
	}
	if s.actions.Count() == 0 {
		return domain.Match{}, &domain.Error{Kind: domain.KindNoMatch, Op: "nearest action"}
	}
	q := append([]float32(nil), query...)
	res, err := s.actions.QueryEmbedding(ctx, q, 1, map[string]string{metaModel: model}, nil)
	if err != nil {
		return domain.Match{}, errors.Wrap(err, "query actions")
	}
	if len(res) == 0 {
		return domain.Match{}, &domain.Error{Kind: domain.KindNoMatch, Op: "nearest action"}
	}
	top := res[0]

	actionID, err := strconv.ParseInt(top.ID, 10, 64)
	if err != nil {
		return domain.Match{}, errors.Wrapf(err, "action id %q", top.ID)
	}
	appID, err := strconv.ParseInt(top.Metadata[metaAppID], 10, 64)
	if err != nil {
		return domain.Match{}, errors.Wrapf(err, "app id of action %d", actionID)
	}
	s.mu.RLock()
	app, ok := s.apps[appID]
	s.mu.RUnlock()
	if !ok {
		return domain.Match{}, errors.Errorf("app %d of action %d is missing", appID, actionID)
	}

	return domain.Match{
		AppID:             appID,
		AppName:           app.name,
		ActionID:          actionID,
		ActionName:        top.Metadata[metaName],
		ActionDescription: top.Content,
		Distance:          1 - float64(top.Similarity),
	}, nil
}

// CountActions returns the number of stored actions.
func (s *Storage) CountActions(context.Context) (int, error) {
	return s.actions.Count(), nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }
