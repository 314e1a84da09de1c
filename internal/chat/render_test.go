package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHTML(t *testing.T) {
	got := RenderHTML("The fee is **PKR 45,000**.\nSubject to change.")
	assert.Contains(t, got, "<strong>PKR 45,000</strong>")
	assert.Contains(t, got, "<br")
}

func TestRenderHTMLDropsRawHTML(t *testing.T) {
	got := RenderHTML(`<script>alert(1)</script>`)
	assert.NotContains(t, got, "<script>")
}

func TestRenderHTMLLists(t *testing.T) {
	got := RenderHTML("Documents:\n\n- CNIC\n- Matric certificate")
	assert.Contains(t, got, "<li>CNIC</li>")
}
