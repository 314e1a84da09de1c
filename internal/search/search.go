// Package search serves cosine-similarity lookups over the knowledge index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/vectordb"
)

const (
	DefaultTopK      = 3
	DefaultThreshold = 0.1

	// DefaultSessionID is used when a request names no session.
	DefaultSessionID = "guest_session"

	StatusSuccess = "success"
)

// Result is a matched knowledge entry with its similarity to the query.
type Result struct {
	knowledge.Entry
	ConfidenceScore float64 `json:"confidence_score"`
}

// Response is the payload returned for a query.
type Response struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Context     []Result `json:"context"`
	QueryTokens int      `json:"query_tokens"`
}

// Service answers search queries against an index and records each one.
type Service struct {
	index     *vectordb.Index
	recorder  *querylog.Recorder
	logger    *slog.Logger
	topK      int
	threshold float64
	now       func() time.Time
}

// NewService creates a Service. topK <= 0 and threshold < 0 fall back to
// the defaults. recorder may be nil.
func NewService(index *vectordb.Index, recorder *querylog.Recorder, logger *slog.Logger, topK int, threshold float64) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		index:     index,
		recorder:  recorder,
		logger:    logger,
		topK:      topK,
		threshold: threshold,
		now:       time.Now,
	}
}

// Query runs one search for query on behalf of sessionID.
func (s *Service) Query(ctx context.Context, query, sessionID string) (Response, error) {
	return s.query(ctx, query, sessionID, querylog.SourceSearch)
}

// QueryFrom is Query with an explicit query log source.
func (s *Service) QueryFrom(ctx context.Context, query string, source querylog.Source) (Response, error) {
	return s.query(ctx, query, DefaultSessionID, source)
}

func (s *Service) query(ctx context.Context, query, sessionID string, source querylog.Source) (Response, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	s.logger.Info("processing query", "session", sessionID, "query", query)

	start := s.now()
	hits, err := s.index.Search(ctx, query, s.topK, s.threshold)
	if err != nil {
		s.logger.Error("search failed", "session", sessionID, "error", err)
		return Response{}, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Entry: h.Entry, ConfidenceScore: float64(h.Similarity)}
	}

	s.recorder.Record(ctx, logEntry(query, results, source, start, s.now()))

	return Response{
		Status:      StatusSuccess,
		Timestamp:   start.Format(time.RFC3339Nano),
		Context:     results,
		QueryTokens: len(strings.Fields(query)),
	}, nil
}

func logEntry(query string, results []Result, source querylog.Source, start, end time.Time) querylog.Entry {
	e := querylog.Entry{
		Timestamp:         start,
		Query:             query,
		CategoriesMatched: []string{},
		Source:            source,
		Outcome:           querylog.OutcomeNoMatch,
		ElapsedMS:         end.Sub(start).Milliseconds(),
	}
	if len(results) == 0 {
		return e
	}
	e.Outcome = querylog.OutcomeMatched
	e.ConfidenceScore = results[0].ConfidenceScore
	seen := make(map[knowledge.Category]bool)
	for _, r := range results {
		if !seen[r.Category] {
			seen[r.Category] = true
			e.CategoriesMatched = append(e.CategoriesMatched, string(r.Category))
		}
	}
	return e
}
