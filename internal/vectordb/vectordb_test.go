package vectordb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/helpdesk/internal/embeddings"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
)

type countingReporter struct {
	total, last, finished int
}

func (r *countingReporter) Start(total int)              { r.total = total }
func (r *countingReporter) Update(current int, _ string) { r.last = current }
func (r *countingReporter) Finish()                      { r.finished++ }

func buildBuiltin(t *testing.T) (*Index, []knowledge.Entry) {
	t.Helper()
	entries := knowledge.Builtin().ListEntries()
	rep := &countingReporter{}
	ix, err := Build(context.Background(), embeddings.NewTFIDF(), entries, rep)
	require.NoError(t, err)
	assert.Equal(t, len(entries), rep.total)
	assert.Equal(t, len(entries), rep.last)
	assert.Equal(t, 1, rep.finished)
	return ix, entries
}

func TestBuildIndexesEveryEntry(t *testing.T) {
	ix, entries := buildBuiltin(t)
	assert.Equal(t, len(entries), ix.Count())
	assert.Equal(t, CollectionName("tfidf", entries), ix.Name())
}

func TestSearchRanksByCosine(t *testing.T) {
	ix, _ := buildBuiltin(t)

	hits, err := ix.Search(context.Background(), "What is the admission fee?", 3, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	assert.Equal(t, "fee-002", hits[0].Entry.ID)
	assert.Equal(t, knowledge.CategoryFeeStructure, hits[0].Entry.Category)
	assert.NotEmpty(t, hits[0].Entry.SourceDocument)
	assert.Positive(t, hits[0].Entry.PageNumber)
	for i, h := range hits {
		assert.GreaterOrEqual(t, h.Similarity, float32(0.1))
		if i > 0 {
			assert.LessOrEqual(t, h.Similarity, hits[i-1].Similarity)
		}
	}
}

func TestSearchUnknownVocabulary(t *testing.T) {
	ix, _ := buildBuiltin(t)

	hits, err := ix.Search(context.Background(), "quantum chromodynamics", 3, 0.1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchTopKClamped(t *testing.T) {
	ix, entries := buildBuiltin(t)

	hits, err := ix.Search(context.Background(), "FUUAST Gulshan campus fee semester admission", 100, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), len(entries))

	hits, err = ix.Search(context.Background(), "fee", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchThreshold(t *testing.T) {
	ix, _ := buildBuiltin(t)

	hits, err := ix.Search(context.Background(), "admission fee", 3, 0.99)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPersistAndLoad(t *testing.T) {
	ix, entries := buildBuiltin(t)
	path := filepath.Join(t.TempDir(), "nested", "index.gob.gz")
	require.NoError(t, ix.Persist(path))

	loaded, err := Load(context.Background(), path, embeddings.NewTFIDF(), entries)
	require.NoError(t, err)
	assert.Equal(t, ix.Count(), loaded.Count())

	want, err := ix.Search(context.Background(), "convocation registration", 3, 0.1)
	require.NoError(t, err)
	got, err := loaded.Search(context.Background(), "convocation registration", 3, 0.1)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Entry, got[i].Entry)
		assert.InDelta(t, want[i].Similarity, got[i].Similarity, 1e-6)
	}
}

func TestLoadStale(t *testing.T) {
	ix, entries := buildBuiltin(t)
	path := filepath.Join(t.TempDir(), "index.gob.gz")
	require.NoError(t, ix.Persist(path))

	changed := append([]knowledge.Entry(nil), entries...)
	changed[0].Content += " Updated."
	_, err := Load(context.Background(), path, embeddings.NewTFIDF(), changed)
	assert.True(t, errors.Is(err, ErrStaleIndex))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), embeddings.NewTFIDF(), nil)
	assert.Error(t, err)
}

func TestCollectionNameDependsOnEmbedder(t *testing.T) {
	entries := knowledge.Builtin().ListEntries()
	assert.NotEqual(t, CollectionName("tfidf", entries), CollectionName("openai", entries))
	assert.Equal(t, CollectionName("tfidf", entries), CollectionName("tfidf", entries))
}
