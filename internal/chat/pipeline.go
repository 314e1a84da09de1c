// Package chat hosts conversation sessions for the HTTP and websocket
// surfaces.
package chat

import (
	"log/slog"

	"github.com/ziadkadry99/helpdesk/internal/backlog"
	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
)

// Pipeline bundles the collaborators every conversation shares.
type Pipeline struct {
	Retriever conversation.Retriever
	Composer  conversation.Composer
	Gateway   conversation.Gateway
	Recorder  *querylog.Recorder
	// Backlog, when set, collects refused questions.
	Backlog *backlog.Store
	Logger  *slog.Logger
}

// NewController starts a fresh conversation whose turns are logged under source.
func (p Pipeline) NewController(source querylog.Source, opts ...conversation.Option) *conversation.Controller {
	base := []conversation.Option{conversation.WithTurnHook(p.Recorder.TurnHook(source))}
	if p.Backlog != nil {
		base = append(base, conversation.WithTurnHook(p.Backlog.TurnHook(string(source), p.Logger)))
	}
	if p.Logger != nil {
		base = append(base, conversation.WithLogger(p.Logger))
	}
	return conversation.New(p.Retriever, p.Composer, p.Gateway, append(base, opts...)...)
}
