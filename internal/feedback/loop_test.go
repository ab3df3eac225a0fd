package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brim-cs/backend/internal/corpus"
)

type fakeEmbedder struct {
	embedding []float32
	err       error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.err
}

type fakeAppender struct {
	inserted []*corpus.Entry
	err      error
}

func (f *fakeAppender) Insert(ctx context.Context, e *corpus.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, e)
	return nil
}

func TestLearnSuccess(t *testing.T) {
	store := &fakeAppender{}
	loop := NewLoop(&fakeEmbedder{embedding: []float32{0.1, 0.2}}, store)

	ok := loop.Learn(context.Background(), "PANELは防水ですか", "IP65相当の防水性能があります", "製品仕様・スペック")

	require.True(t, ok)
	require.Len(t, store.inserted, 1)

	entry := store.inserted[0]
	assert.Equal(t, "PANELは防水ですか", entry.Question)
	assert.Equal(t, "IP65相当の防水性能があります", entry.Answer)
	assert.Equal(t, "製品仕様・スペック", entry.Category)
	assert.Equal(t, PlatformTag, entry.Platform)
	assert.Equal(t, []float32{0.1, 0.2}, entry.Embedding)
}

func TestLearnEmbeddingFailureSkipsAppend(t *testing.T) {
	store := &fakeAppender{}
	loop := NewLoop(&fakeEmbedder{err: errors.New("timeout")}, store)

	ok := loop.Learn(context.Background(), "質問", "回答", "その他")

	assert.False(t, ok)
	assert.Empty(t, store.inserted, "corpus must stay unchanged when embedding fails")
}

func TestLearnPersistenceFailure(t *testing.T) {
	store := &fakeAppender{err: errors.New("constraint violation")}
	loop := NewLoop(&fakeEmbedder{embedding: []float32{0.1}}, store)

	ok := loop.Learn(context.Background(), "質問", "回答", "その他")

	assert.False(t, ok)
	assert.Empty(t, store.inserted)
}
