// Package vectordb holds the semantic search index over knowledge entries,
// backed by an in-memory chromem-go collection.
package vectordb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/helpdesk/internal/embeddings"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/progress"
)

// embedBatchSize is the number of entries embedded per embedder call.
const embedBatchSize = 16

// ErrStaleIndex is returned by Load when the persisted index was built from
// different entries or with a different embedder.
var ErrStaleIndex = errors.New("persisted index does not match the knowledge base")

// Hit is one search result.
type Hit struct {
	Entry      knowledge.Entry
	Similarity float32
}

// Index is a semantic index over a fixed set of knowledge entries.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	name       string
}

// CollectionName derives the collection name from the embedder and the
// indexed entries, so a persisted index is only reused for the same inputs.
func CollectionName(embedderName string, entries []knowledge.Entry) string {
	h := sha256.New()
	h.Write([]byte(embedderName))
	for _, e := range entries {
		fmt.Fprintf(h, "\x00%s\x00%s\x00%s\x00%s\x00%d", e.ID, e.Category, e.Content, e.SourceDocument, e.PageNumber)
	}
	return "knowledge-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// prepare fits corpus-derived embedders on the entry contents.
func prepare(embedder embeddings.Embedder, entries []knowledge.Entry) error {
	f, ok := embedder.(embeddings.Fitter)
	if !ok {
		return nil
	}
	corpus := make([]string, len(entries))
	for i, e := range entries {
		corpus[i] = e.Content
	}
	if err := f.Fit(corpus); err != nil {
		return fmt.Errorf("fit %s: %w", embedder.Name(), err)
	}
	return nil
}

// Build embeds every entry and returns the populated index. Entries whose
// embedding is the zero vector are skipped since they can match nothing.
func Build(ctx context.Context, embedder embeddings.Embedder, entries []knowledge.Entry, rep progress.Reporter) (*Index, error) {
	if rep == nil {
		rep = progress.Nop{}
	}
	if err := prepare(embedder, entries); err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	name := CollectionName(embedder.Name(), entries)
	col, err := db.GetOrCreateCollection(name, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	rep.Start(len(entries))
	defer rep.Finish()

	done := 0
	for start := 0; start < len(entries); start += embedBatchSize {
		end := min(start+embedBatchSize, len(entries))
		batch := entries[start:end]

		texts := make([]string, len(batch))
		for i, e := range batch {
			texts[i] = e.Content
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed entries: %w", err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%s returned %d embeddings for %d entries", embedder.Name(), len(vecs), len(batch))
		}

		docs := make([]chromem.Document, 0, len(batch))
		for i, e := range batch {
			if embeddings.IsZero(vecs[i]) {
				continue
			}
			docs = append(docs, chromem.Document{
				ID:        e.ID,
				Content:   e.Content,
				Metadata:  entryToMetadata(e),
				Embedding: vecs[i],
			})
		}
		if len(docs) > 0 {
			if err := col.AddDocuments(ctx, docs, 1); err != nil {
				return nil, fmt.Errorf("add documents: %w", err)
			}
		}

		done += len(batch)
		rep.Update(done, batch[len(batch)-1].ID)
	}

	return &Index{db: db, collection: col, embedder: embedder, name: name}, nil
}

// Load restores an index written by Persist. It fails with ErrStaleIndex
// when the file holds no collection for these entries and embedder.
func Load(ctx context.Context, path string, embedder embeddings.Embedder, entries []knowledge.Entry) (*Index, error) {
	if err := prepare(embedder, entries); err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("import index from %s: %w", path, err)
	}

	name := CollectionName(embedder.Name(), entries)
	col := db.GetCollection(name, embeddings.ToChromemFunc(embedder))
	if col == nil {
		return nil, ErrStaleIndex
	}
	return &Index{db: db, collection: col, embedder: embedder, name: name}, nil
}

// Persist writes the index to path as a gzip-compressed gob file.
func (ix *Index) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := ix.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	return nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Name returns the collection name.
func (ix *Index) Name() string { return ix.name }

// Embedder returns the embedder queries are embedded with.
func (ix *Index) Embedder() embeddings.Embedder { return ix.embedder }

// Search returns up to topK entries whose cosine similarity to query is at
// least threshold, most similar first.
func (ix *Index) Search(ctx context.Context, query string, topK int, threshold float64) ([]Hit, error) {
	count := ix.collection.Count()
	if topK <= 0 || count == 0 {
		return nil, nil
	}
	topK = min(topK, count)

	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || embeddings.IsZero(vecs[0]) {
		return nil, nil
	}

	results, err := ix.collection.QueryEmbedding(ctx, vecs[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		if float64(r.Similarity) < threshold {
			continue
		}
		hits = append(hits, Hit{Entry: metadataToEntry(r.ID, r.Content, r.Metadata), Similarity: r.Similarity})
	}
	return hits, nil
}

func entryToMetadata(e knowledge.Entry) map[string]string {
	return map[string]string{
		"category":        string(e.Category),
		"source_document": e.SourceDocument,
		"page_number":     strconv.Itoa(e.PageNumber),
	}
}

func metadataToEntry(id, content string, m map[string]string) knowledge.Entry {
	page, _ := strconv.Atoi(m["page_number"])
	return knowledge.Entry{
		ID:             id,
		Category:       knowledge.Category(m["category"]),
		Content:        content,
		SourceDocument: m["source_document"],
		PageNumber:     page,
	}
}
