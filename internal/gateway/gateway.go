// Package gateway performs the single generation call for a composed prompt
// and converts every outcome into a displayable response.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/ziadkadry99/helpdesk/internal/llm"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

const (
	// ApologyText replaces the answer when the generation call fails.
	ApologyText = "A technical error occurred. Please contact the university helpdesk for official support."
	// InternalErrorText replaces an empty generated answer.
	InternalErrorText = "I apologize, an internal error occurred while processing the institutional records."
)

// Settings are the generation parameters sent with every call.
type Settings struct {
	Model       string
	Temperature float64
	TopK        int
	TopP        float64
	MaxTokens   int
	// Timeout bounds one call. Zero disables the bound.
	Timeout time.Duration
}

// DefaultSettings returns near-deterministic sampling with a 30s timeout.
func DefaultSettings() Settings {
	return Settings{
		Temperature: 0.1,
		TopK:        1,
		TopP:        0.1,
		Timeout:     30 * time.Second,
	}
}

// Response is the outcome of one Complete call. OK is false only when the
// generation service failed.
type Response struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
	OK      bool     `json:"ok"`
}

// Gateway wraps an llm.Provider.
type Gateway struct {
	provider llm.Provider
	settings Settings
	logger   *slog.Logger
}

// New creates a Gateway. A nil logger discards log output.
func New(provider llm.Provider, settings Settings, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{provider: provider, settings: settings, logger: logger}
}

// Settings returns the generation parameters in use.
func (g *Gateway) Settings() Settings { return g.settings }

// Complete sends prompt to the provider exactly once. It never returns an
// error: failures become ApologyText with no sources. Sources list every
// entry whether or not the answer used it.
func (g *Gateway) Complete(ctx context.Context, prompt string, entries []retrieval.ScoredEntry) Response {
	if g.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.settings.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       g.settings.Model,
		Messages:    llm.UserPrompt(prompt),
		MaxTokens:   g.settings.MaxTokens,
		Temperature: g.settings.Temperature,
		TopK:        g.settings.TopK,
		TopP:        g.settings.TopP,
	})
	if err != nil {
		g.logger.Error("generation failed",
			"provider", g.provider.Name(),
			"elapsed", time.Since(start),
			"error", err)
		return Response{Text: ApologyText, Sources: []string{}, OK: false}
	}

	g.logger.Debug("generation complete",
		"provider", g.provider.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens),
		"elapsed", time.Since(start))

	text := resp.Content
	if text == "" {
		g.logger.Warn("generation returned empty output", "provider", g.provider.Name(), "finish_reason", resp.FinishReason)
		text = InternalErrorText
	}
	return Response{Text: text, Sources: retrieval.Citations(entries), OK: true}
}
