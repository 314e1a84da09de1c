package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefaultPatterns are the globs used when a knowledge path names a directory.
var DefaultPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

// fileEntry accepts both the snake_case YAML keys and the camelCase keys used
// by JSON exports of the knowledge base.
type fileEntry struct {
	ID                string `yaml:"id"`
	Category          string `yaml:"category"`
	Content           string `yaml:"content"`
	SourceDocument    string `yaml:"source_document"`
	SourceDocumentAlt string `yaml:"sourceDocument"`
	PageNumber        int    `yaml:"page_number"`
	PageNumberAlt     int    `yaml:"pageNumber"`
}

func (f fileEntry) entry() Entry {
	e := Entry{
		ID:             strings.TrimSpace(f.ID),
		Category:       Category(strings.TrimSpace(f.Category)),
		Content:        strings.TrimSpace(f.Content),
		SourceDocument: f.SourceDocument,
		PageNumber:     f.PageNumber,
	}
	if e.SourceDocument == "" {
		e.SourceDocument = f.SourceDocumentAlt
	}
	if e.PageNumber == 0 {
		e.PageNumber = f.PageNumberAlt
	}
	return e
}

// LoadFile builds a store from a file, a directory or a doublestar glob.
// Directory contents are read in lexical path order.
func LoadFile(path string) (*StaticStore, error) {
	files, err := resolve(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no knowledge files found at %s", path)
	}

	var entries []Entry
	for _, f := range files {
		got, err := parseFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, got...)
	}

	store, err := NewStaticStore(entries)
	if err != nil {
		return nil, fmt.Errorf("validating knowledge from %s: %w", path, err)
	}
	return store, nil
}

// Open returns the builtin store for an empty path, or loads the path.
func Open(path string) (*StaticStore, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

func resolve(path string) ([]string, error) {
	if strings.ContainsAny(path, "*?[{") {
		matches, err := doublestar.FilepathGlob(path)
		if err != nil {
			return nil, fmt.Errorf("expanding knowledge glob %s: %w", path, err)
		}
		sort.Strings(matches)
		return matches, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing knowledge path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	fsys := os.DirFS(path)
	var files []string
	for _, pattern := range DefaultPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		for _, m := range matches {
			files = append(files, filepath.Join(path, filepath.FromSlash(m)))
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var raw []fileEntry
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Entries []fileEntry `yaml:"entries"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		raw = wrapped.Entries
	default:
		return nil, fmt.Errorf("decoding %s: expected a list of entries", path)
	}

	entries := make([]Entry, len(raw))
	for i, r := range raw {
		entries[i] = r.entry()
	}
	return entries, nil
}
