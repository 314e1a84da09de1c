// Package backlog collects questions the records could not answer so the
// records office can see which facts are missing.
package backlog

import "time"

// Status represents the lifecycle stage of an unanswered question.
type Status string

const (
	StatusOpen      Status = "open"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved || s == StatusDismissed
}

// Question is a refused question, merged across repeated askings.
type Question struct {
	ID           string     `json:"id"`
	Question     string     `json:"question"` // first phrasing seen
	Source       string     `json:"source"`   // surface it was first asked on
	AskCount     int        `json:"askCount"`
	Status       Status     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"` // e.g. "added entry fee-003"
	ResolvedBy   string     `json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	FirstAskedAt time.Time  `json:"firstAskedAt"`
	LastAskedAt  time.Time  `json:"lastAskedAt"`
}

// ListFilter controls which questions to return.
type ListFilter struct {
	Status   Status
	MinAsked int
	Limit    int
	Offset   int
}
