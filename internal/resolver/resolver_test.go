package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appsearch/internal/domain"
	"appsearch/internal/embedding/hashing"
	"appsearch/internal/vectorstore/memory"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Model() string  { return "stub" }
func (s *stubEmbedder) Dimension() int { return 3 }
func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

type brokenStore struct{ domain.Store }

func (brokenStore) Nearest(context.Context, []float32, string) (domain.Match, error) {
	return domain.Match{}, errors.New("connection reset")
}

func TestFindNearestReturnsBestMatch(t *testing.T) {
	ctx := context.Background()
	embedder, err := hashing.NewEmbedder(256)
	require.NoError(t, err)
	store, err := memory.NewStorage(256)
	require.NoError(t, err)

	appID, err := store.InsertApp(ctx, "crm", "Customer relationship management.")
	require.NoError(t, err)
	for _, a := range []domain.Action{
		{Name: "create_contact", Description: "Create a new contact record with name and phone number."},
		{Name: "delete_deal", Description: "Remove a sales deal from the pipeline."},
	} {
		vec, err := embedder.Embed(ctx, a.Name+" "+a.Description)
		require.NoError(t, err)
		_, err = store.InsertAction(ctx, domain.ActionRecord{AppID: appID, Name: a.Name, Description: a.Description, Embedding: vec, Model: embedder.Model()})
		require.NoError(t, err)
	}

	m, err := New(store, embedder, nil).FindNearest(ctx, "new contact with phone number")
	require.NoError(t, err)
	assert.Equal(t, "create_contact", m.ActionName)
	assert.Equal(t, "crm", m.AppName)
}

func TestFindNearestOnEmptyStoreIsNoMatch(t *testing.T) {
	store, err := memory.NewStorage(3)
	require.NoError(t, err)

	_, err = New(store, &stubEmbedder{vec: []float32{1, 0, 0}}, nil).FindNearest(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoMatch)
	assert.NotErrorIs(t, err, domain.ErrStore)
}

func TestFindNearestRejectsEmptyQuery(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{1, 0, 0}}
	_, err := New(nil, embedder, nil).FindNearest(context.Background(), "  \t")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Zero(t, embedder.calls)
}

func TestFindNearestEmbeddingFailures(t *testing.T) {
	store, err := memory.NewStorage(3)
	require.NoError(t, err)

	_, err = New(store, &stubEmbedder{err: errors.New("timeout")}, nil).FindNearest(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	_, err = New(store, &stubEmbedder{vec: []float32{1, 0}}, nil).FindNearest(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestFindNearestStoreFailure(t *testing.T) {
	_, err := New(brokenStore{}, &stubEmbedder{vec: []float32{1, 0, 0}}, nil).FindNearest(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFindNearestIgnoresRowsFromOtherModels(t *testing.T) {
	ctx := context.Background()
	store, err := memory.NewStorage(3)
	require.NoError(t, err)
	appID, err := store.InsertApp(ctx, "a", "b")
	require.NoError(t, err)
	_, err = store.InsertAction(ctx, domain.ActionRecord{AppID: appID, Name: "x", Description: "y", Embedding: []float32{1, 0, 0}, Model: "previous-model"})
	require.NoError(t, err)

	_, err = New(store, &stubEmbedder{vec: []float32{1, 0, 0}}, nil).FindNearest(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}
