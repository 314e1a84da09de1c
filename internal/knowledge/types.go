package knowledge

import (
	"errors"
	"fmt"
)

// Category is the topic label of a knowledge entry. The set is closed.
type Category string

const (
	CategoryAdmissions       Category = "Admissions"
	CategoryFeeStructure     Category = "Fee Structure"
	CategoryAcademicPrograms Category = "Academic Programs"
	CategoryAcademicCalendar Category = "Academic Calendar"
	CategoryConvocation      Category = "Convocation"
	CategoryGeneral          Category = "General"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryAdmissions,
	CategoryFeeStructure,
	CategoryAcademicPrograms,
	CategoryAcademicCalendar,
	CategoryConvocation,
	CategoryGeneral,
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Entry is a single immutable fact with its citation.
type Entry struct {
	ID             string   `json:"id" yaml:"id"`
	Category       Category `json:"category" yaml:"category"`
	Content        string   `json:"content" yaml:"content"`
	SourceDocument string   `json:"sourceDocument" yaml:"source_document"`
	PageNumber     int      `json:"pageNumber" yaml:"page_number"`
}

// Citation renders the user-visible citation string for the entry.
func (e Entry) Citation() string {
	return fmt.Sprintf("%s (Page %d)", e.SourceDocument, e.PageNumber)
}

// Store exposes the fixed collection of knowledge entries.
type Store interface {
	// ListEntries returns all entries in store order. Callers must not modify
	// the returned slice.
	ListEntries() []Entry
}

var (
	ErrDuplicateID     = errors.New("duplicate entry id")
	ErrUnknownCategory = errors.New("unknown category")
	ErrMissingCitation = errors.New("missing citation")
	ErrEmptyEntry      = errors.New("empty entry")
)

// Validate checks a set of entries for the store invariants.
func Validate(entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.Content == "" {
			return fmt.Errorf("entry %d (%q): %w", i, e.ID, ErrEmptyEntry)
		}
		if seen[e.ID] {
			return fmt.Errorf("entry %q: %w", e.ID, ErrDuplicateID)
		}
		seen[e.ID] = true
		if !e.Category.Valid() {
			return fmt.Errorf("entry %q: %w %q", e.ID, ErrUnknownCategory, e.Category)
		}
		if e.SourceDocument == "" || e.PageNumber <= 0 {
			return fmt.Errorf("entry %q: %w", e.ID, ErrMissingCitation)
		}
	}
	return nil
}
