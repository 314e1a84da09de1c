package embeddings

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// TFIDF embeds text as an L2-normalized TF-IDF vector over the vocabulary of
// the corpus it was fitted on. Queries sharing no vocabulary term embed to
// the zero vector.
type TFIDF struct {
	mu    sync.RWMutex
	vocab map[string]int
	idf   []float64
}

// NewTFIDF creates an unfitted TF-IDF embedder.
func NewTFIDF() *TFIDF {
	return &TFIDF{}
}

// Analyze lowercases text, strips punctuation, splits it into terms of two
// or more word characters and drops English stop words.
func Analyze(text string) []string {
	text = punctuation.ReplaceAllString(strings.ToLower(text), "")
	var terms []string
	for _, t := range termPattern.FindAllString(text, -1) {
		if !englishStopWords[t] {
			terms = append(terms, t)
		}
	}
	return terms
}

// Fit builds the vocabulary and smoothed inverse document frequencies:
// idf = ln((1+n)/(1+df)) + 1.
func (t *TFIDF) Fit(corpus []string) error {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, term := range Analyze(doc) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	t.mu.Lock()
	t.vocab, t.idf = vocab, idf
	t.mu.Unlock()
	return nil
}

func (t *TFIDF) Name() string {
	return "tfidf"
}

// Dimensions returns the vocabulary size, or 0 before Fit.
func (t *TFIDF) Dimensions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.idf)
}

func (t *TFIDF) Embed(_ context.Context, texts []string) ([][]float32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.vocab == nil {
		return nil, ErrNotFitted
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = t.vector(text)
	}
	return out, nil
}

func (t *TFIDF) vector(text string) []float32 {
	weights := make([]float64, len(t.idf))
	for _, term := range Analyze(text) {
		if idx, ok := t.vocab[term]; ok {
			weights[idx]++
		}
	}

	var norm float64
	for i, tf := range weights {
		weights[i] = tf * t.idf[i]
		norm += weights[i] * weights[i]
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, len(weights))
	if norm == 0 {
		return vec
	}
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
