package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinStore(t *testing.T) {
	s := Builtin()
	entries := s.ListEntries()
	require.Len(t, entries, 8)
	assert.Equal(t, "adm-001", entries[0].ID)
	assert.Equal(t, "gen-001", entries[7].ID)

	fee, ok := s.Get("fee-001")
	require.True(t, ok)
	assert.Equal(t, CategoryFeeStructure, fee.Category)
	assert.Equal(t, "Fee Schedule 2024 (Page 4)", fee.Citation())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestNewStaticStoreCopiesInput(t *testing.T) {
	in := []Entry{{ID: "a", Category: CategoryGeneral, Content: "x", SourceDocument: "Doc", PageNumber: 1}}
	s, err := NewStaticStore(in)
	require.NoError(t, err)

	in[0].Content = "mutated"
	assert.Equal(t, "x", s.ListEntries()[0].Content)
}

func TestValidate(t *testing.T) {
	good := Entry{ID: "a", Category: CategoryGeneral, Content: "x", SourceDocument: "Doc", PageNumber: 1}

	tests := []struct {
		name    string
		entries []Entry
		want    error
	}{
		{"valid", []Entry{good}, nil},
		{"duplicate", []Entry{good, good}, ErrDuplicateID},
		{"unknown category", []Entry{{ID: "b", Category: "Sports", Content: "x", SourceDocument: "Doc", PageNumber: 1}}, ErrUnknownCategory},
		{"no document", []Entry{{ID: "b", Category: CategoryGeneral, Content: "x", PageNumber: 1}}, ErrMissingCitation},
		{"no page", []Entry{{ID: "b", Category: CategoryGeneral, Content: "x", SourceDocument: "Doc"}}, ErrMissingCitation},
		{"empty", []Entry{{ID: "", Category: CategoryGeneral, Content: "x", SourceDocument: "Doc", PageNumber: 1}}, ErrEmptyEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entries)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestLoadFileYAMLList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	writeFile(t, path, `
- id: lib-001
  category: General
  content: The central library is open from 8am to 8pm.
  source_document: Campus Guide
  page_number: 3
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, s.ListEntries(), 1)
	assert.Equal(t, "Campus Guide (Page 3)", s.ListEntries()[0].Citation())
}

func TestLoadFileJSONCamelCase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge_base.json")
	writeFile(t, path, `{"entries": [
		{"id": "fee-009", "category": "Fee Structure", "content": "Hostel fee is PKR 20,000.", "sourceDocument": "Fee Schedule 2024", "pageNumber": 9}
	]}`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	e := s.ListEntries()[0]
	assert.Equal(t, "Fee Schedule 2024", e.SourceDocument)
	assert.Equal(t, 9, e.PageNumber)
}

func TestLoadFileDirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "b.yaml"), `
- {id: b-1, category: General, content: second, source_document: Doc, page_number: 1}
`)
	writeFile(t, filepath.Join(dir, "a.yml"), `
- {id: a-1, category: General, content: first, source_document: Doc, page_number: 1}
`)
	writeFile(t, filepath.Join(dir, "sub", "c.json"), `[{"id": "c-1", "category": "General", "content": "third", "sourceDocument": "Doc", "pageNumber": 2}]`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	s, err := LoadFile(dir)
	require.NoError(t, err)

	var ids []string
	for _, e := range s.ListEntries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a-1", "b-1", "c-1"}, ids)
}

func TestLoadFileRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), `
- {id: x, category: General, content: one, source_document: Doc, page_number: 1}
- {id: x, category: General, content: two, source_document: Doc, page_number: 1}
`)

	_, err := LoadFile(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadFileEmptyDirectory(t *testing.T) {
	_, err := LoadFile(t.TempDir())
	assert.Error(t, err)
}

func TestOpenEmptyPathUsesBuiltin(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, 8, s.Len())
}

func TestLoadRepositoryTestdata(t *testing.T) {
	s, err := LoadFile(filepath.Join("..", "..", "testdata", "knowledge"))
	require.NoError(t, err)
	assert.Equal(t, Builtin().ListEntries(), s.ListEntries())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
