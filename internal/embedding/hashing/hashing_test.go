package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbedIsDeterministicAndNormalized(t *testing.T) {
	e, err := NewEmbedder(64)
	require.NoError(t, err)
	assert.Equal(t, "hashing-64", e.Model())
	assert.Equal(t, 64, e.Dimension())

	a, err := e.Embed(context.Background(), "Send an email to a contact")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Send an email to a contact")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a, 64)
	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEmbedRanksOverlappingTextCloser(t *testing.T) {
	e, err := NewEmbedder(256)
	require.NoError(t, err)
	ctx := context.Background()

	query, err := e.Embed(ctx, "send email")
	require.NoError(t, err)
	related, err := e.Embed(ctx, "Action: send_email. Send an email message to a recipient.")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "Action: create_issue. Open a new ticket in the tracker.")
	require.NoError(t, err)

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbedStopwordOnlyText(t *testing.T) {
	e, err := NewEmbedder(32)
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "the and of")
	require.NoError(t, err)
	assert.Len(t, vec, 32)
}

func TestEmbedRejectsTextWithoutTokens(t *testing.T) {
	e, err := NewEmbedder(32)
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "  ...  ")
	assert.Error(t, err)
}

func TestNewEmbedderRejectsBadDimension(t *testing.T) {
	_, err := NewEmbedder(0)
	assert.Error(t, err)
}
