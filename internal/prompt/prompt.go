// Package prompt assembles the grounded instruction block sent to the
// generation service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

// RefusalText is the fixed answer for questions the records cannot answer.
const RefusalText = "I'm sorry, this information is not available in the official university records I have access to."

// DefaultInstitution names the institution the assistant speaks for.
const DefaultInstitution = "Federal Urdu University of Arts, Science & Technology (FUUAST), Gulshan Campus"

// Composer renders the instruction template for one query.
type Composer struct {
	institution string
}

// NewComposer creates a Composer for the given institution name. An empty
// name selects DefaultInstitution.
func NewComposer(institution string) *Composer {
	if strings.TrimSpace(institution) == "" {
		institution = DefaultInstitution
	}
	return &Composer{institution: institution}
}

// Institution returns the institution name used in the persona statement.
func (c *Composer) Institution() string { return c.institution }

// Compose builds the instruction block. context must be non-empty; callers
// answer with RefusalText instead of composing for an empty context.
func (c *Composer) Compose(query string, context []retrieval.ScoredEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an AI-powered academic assistant for %s.\n\n", c.institution)

	b.WriteString("SYSTEM ROLE:\n")
	b.WriteString("Official, factual, and document-grounded university information assistant.\n")
	b.WriteString("Answer strictly using the provided context.\n")
	b.WriteString("Do not invent information.\n")
	b.WriteString("Tone: Clear, Formal, Neutral Academic.\n")
	b.WriteString("No emojis, no jokes, no casual language.\n\n")

	b.WriteString("CITATION REQUIREMENT:\n")
	b.WriteString("Every factual answer MUST end with a citation in this format: (Source: <Document Name>, Page <Page Number>).\n")
	b.WriteString("If multiple entries are used, list all sources clearly.\n\n")

	b.WriteString("CONTEXT PROVIDED:\n")
	b.WriteString(RenderContext(context))
	b.WriteString("\n\n")

	b.WriteString("USER QUERY:\n")
	b.WriteString(query)
	b.WriteString("\n\n")

	b.WriteString("If the query cannot be answered by the context, respond ONLY with:\n")
	fmt.Fprintf(&b, "%q\n", RefusalText)

	return b.String()
}

// RenderContext formats each entry with its citation tag, separated by a
// blank line.
func RenderContext(context []retrieval.ScoredEntry) string {
	parts := make([]string, len(context))
	for i, e := range context {
		parts[i] = fmt.Sprintf("[Source: %s, Page %d] Content: %s", e.SourceDocument, e.PageNumber, e.Content)
	}
	return strings.Join(parts, "\n\n")
}
