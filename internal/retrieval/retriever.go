// Package retrieval ranks knowledge entries against a free-text query by
// keyword overlap.
package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/helpdesk/internal/knowledge"
)

// DefaultLimit is the number of entries returned when no limit is given.
const DefaultLimit = 3

// minTokenLength is the shortest token kept after splitting; shorter tokens
// act as stop words.
const minTokenLength = 4

const (
	contentWeight  = 1
	categoryWeight = 2
)

var nonWord = regexp.MustCompile(`\W+`)

// ScoredEntry is a knowledge entry with its relevance score for one query.
type ScoredEntry struct {
	knowledge.Entry
	Score int `json:"score"`
}

// Tokenize lowercases the query, splits it on non-word runs and drops tokens
// shorter than four characters. Repeated tokens are kept.
func Tokenize(query string) []string {
	parts := nonWord.Split(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= minTokenLength {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Score computes the relevance of an entry for the given tokens.
func Score(tokens []string, e knowledge.Entry) int {
	content := strings.ToLower(e.Content)
	category := strings.ToLower(string(e.Category))

	score := 0
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			score += contentWeight
		}
		if strings.Contains(category, tok) {
			score += categoryWeight
		}
	}
	return score
}

// Retrieve returns up to limit entries with a positive score, best first.
// Entries with equal scores keep their store order. A limit <= 0 selects
// DefaultLimit.
func Retrieve(query string, entries []knowledge.Entry, limit int) []ScoredEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var scored []ScoredEntry
	for _, e := range entries {
		if s := Score(tokens, e); s > 0 {
			scored = append(scored, ScoredEntry{Entry: e, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Retriever binds a knowledge store and a result limit.
type Retriever struct {
	store knowledge.Store
	limit int
}

// New creates a Retriever over store. A limit <= 0 selects DefaultLimit.
func New(store knowledge.Store, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{store: store, limit: limit}
}

// Retrieve ranks the store's entries against query.
func (r *Retriever) Retrieve(query string) []ScoredEntry {
	return Retrieve(query, r.store.ListEntries(), r.limit)
}

// Limit returns the configured result limit.
func (r *Retriever) Limit() int { return r.limit }

// Citations renders the user-visible citation string for each entry, in order.
func Citations(entries []ScoredEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Citation()
	}
	return out
}

// Categories returns the distinct categories of entries in first-seen order.
func Categories(entries []ScoredEntry) []string {
	seen := make(map[knowledge.Category]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, string(e.Category))
		}
	}
	return out
}
