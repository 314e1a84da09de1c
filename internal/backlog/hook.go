package backlog

import (
	"context"
	"log/slog"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
)

// TurnHook returns a conversation hook that records refused questions
// asked through source. Write failures are logged and otherwise ignored.
func (s *Store) TurnHook(source string, logger *slog.Logger) func(conversation.Turn) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(t conversation.Turn) {
		if s == nil || !t.Refused {
			return
		}
		if _, err := s.Record(context.Background(), t.Query, source); err != nil {
			logger.Warn("backlog write failed", "source", source, "error", err)
		}
	}
}
