package progress

import (
	"bytes"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Out: &buf, Description: "Indexing knowledge"}
	r.Start(2)
	r.Update(1, "adm-001")
	r.Update(2, "adm-002")
	r.Finish()

	want := "Indexing knowledge: 2 entries\n[1/2] adm-001\n[2/2] adm-002\nIndexing knowledge: done\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*LineReporter); !ok {
		t.Error("expected LineReporter under CI")
	}
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("x").(*TerminalReporter); !ok {
		t.Error("expected TerminalReporter outside CI")
	}
}
