package querylog

import (
	"context"
	"log/slog"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

// maxTokenScore is the most a single query token can add to an entry score.
const maxTokenScore = 3

// Recorder logs entries and reports failures through the logger only;
// analytics never interrupt a query.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder. A nil store makes every call a no-op.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: store, logger: logger}
}

// Record stores e.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Log(ctx, e); err != nil {
		r.logger.Warn("query log write failed", "source", e.Source, "error", err)
	}
}

// TurnHook returns a conversation hook that logs each finished turn under source.
func (r *Recorder) TurnHook(source Source) func(conversation.Turn) {
	return func(t conversation.Turn) {
		r.Record(context.Background(), FromTurn(source, t))
	}
}

// FromTurn converts a finished conversation turn into a log entry.
func FromTurn(source Source, t conversation.Turn) Entry {
	outcome := OutcomeAnswered
	switch {
	case t.Refused:
		outcome = OutcomeRefused
	case t.Failed:
		outcome = OutcomeFailed
	}
	return Entry{
		Timestamp:         t.Reply.Timestamp,
		Query:             t.Query,
		CategoriesMatched: nonNil(retrieval.Categories(t.Entries)),
		ConfidenceScore:   KeywordConfidence(t.Query, t.Entries),
		Source:            source,
		Outcome:           outcome,
		ElapsedMS:         t.Elapsed.Milliseconds(),
	}
}

// KeywordConfidence rates the best keyword match in [0, 1]: the top score
// over the highest score the query's tokens could reach.
func KeywordConfidence(query string, entries []retrieval.ScoredEntry) float64 {
	tokens := retrieval.Tokenize(query)
	if len(entries) == 0 || len(tokens) == 0 {
		return 0
	}
	c := float64(entries[0].Score) / float64(maxTokenScore*len(tokens))
	if c > 1 {
		c = 1
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
