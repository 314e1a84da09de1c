// Package querylog records one analytics row per processed query. It stores
// what was asked and how well the knowledge base matched, never the answer.
package querylog

import "time"

// Source identifies the surface a query arrived through.
type Source string

const (
	SourceChat   Source = "chat"
	SourceSearch Source = "search"
	SourceMCP    Source = "mcp"
)

// Outcome summarizes how a query was handled.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeRefused  Outcome = "refused"
	OutcomeFailed   Outcome = "failed"
	OutcomeMatched  Outcome = "matched"
	OutcomeNoMatch  Outcome = "no_match"
)

// Entry is a single query log record.
type Entry struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Query             string    `json:"query"`
	CategoriesMatched []string  `json:"categoriesMatched"`
	ConfidenceScore   float64   `json:"confidenceScore"`
	Source            Source    `json:"source"`
	Outcome           Outcome   `json:"outcome"`
	ElapsedMS         int64     `json:"elapsedMs"`
}
