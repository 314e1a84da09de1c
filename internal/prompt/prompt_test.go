package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

func feeContext(t *testing.T) []retrieval.ScoredEntry {
	t.Helper()
	ctx := retrieval.Retrieve("semester fees structure", knowledge.Builtin().ListEntries(), 2)
	require.Len(t, ctx, 2)
	return ctx
}

func TestComposeSectionOrder(t *testing.T) {
	c := NewComposer("")
	out := c.Compose("What is the semester fee?", feeContext(t))

	sections := []string{
		"You are an AI-powered academic assistant for " + DefaultInstitution,
		"Answer strictly using the provided context.",
		"Do not invent information.",
		"(Source: <Document Name>, Page <Page Number>)",
		"CONTEXT PROVIDED:",
		"[Source: Fee Schedule 2024, Page 4] Content: The semester fee",
		"[Source: Fee Schedule 2024, Page 5] Content: A one-time admission fee",
		"USER QUERY:\nWhat is the semester fee?",
		"respond ONLY with:",
		`"` + RefusalText + `"`,
	}

	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
}

func TestComposeKeepsQueryVerbatim(t *testing.T) {
	query := "  Fee for BS (Evening)?? "
	out := NewComposer("").Compose(query, feeContext(t))
	assert.Contains(t, out, "USER QUERY:\n"+query+"\n")
}

func TestComposeCustomInstitution(t *testing.T) {
	c := NewComposer("Example Institute")
	assert.Equal(t, "Example Institute", c.Institution())
	assert.True(t, strings.HasPrefix(c.Compose("q", feeContext(t)), "You are an AI-powered academic assistant for Example Institute."))
}

func TestRenderContext(t *testing.T) {
	ctx := feeContext(t)
	got := RenderContext(ctx)
	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 2)
	assert.Equal(t, "[Source: Fee Schedule 2024, Page 4] Content: "+ctx[0].Content, parts[0])
	assert.Equal(t, "[Source: Fee Schedule 2024, Page 5] Content: "+ctx[1].Content, parts[1])
}

func TestComposeIsStaticApartFromContextAndQuery(t *testing.T) {
	c := NewComposer("")
	ctx := feeContext(t)
	a := c.Compose("first question", ctx)
	b := c.Compose("first question", ctx)
	assert.Equal(t, a, b)

	other := c.Compose("second question", ctx)
	assert.Equal(t, strings.Replace(a, "first question", "second question", 1), other)
}
