package querylog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/helpdesk/internal/db"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("query log entry not found")

// timeLayout sorts lexically in the same order as time.
const timeLayout = "2006-01-02 15:04:05.000"

// Store provides access to the query_log table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Log inserts a new entry. Empty ID and zero Timestamp are filled in.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeAnswered
	}
	if entry.CategoriesMatched == nil {
		entry.CategoriesMatched = []string{}
	}

	categories, err := json.Marshal(entry.CategoriesMatched)
	if err != nil {
		return fmt.Errorf("marshalling categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_log (
			id, timestamp, query, categories_matched,
			confidence_score, source, outcome, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(timeLayout),
		entry.Query,
		string(categories),
		entry.ConfidenceScore,
		string(entry.Source),
		string(entry.Outcome),
		entry.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("inserting query log entry: %w", err)
	}
	return nil
}

const selectColumns = "SELECT id, timestamp, query, categories_matched, confidence_score, source, outcome, elapsed_ms FROM query_log"

// Get retrieves a single entry.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Filter controls which entries Query returns.
type Filter struct {
	Source Source
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(timeLayout))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying query log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CountBySource returns the number of entries per source.
func (s *Store) CountBySource(ctx context.Context) (map[Source]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT source, COUNT(*) FROM query_log GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("counting query log: %w", err)
	}
	defer rows.Close()

	counts := make(map[Source]int)
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, err
		}
		counts[Source(src)] = n
	}
	return counts, rows.Err()
}

// DeleteBefore removes entries older than before and returns how many were removed.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM query_log WHERE timestamp < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old query log entries: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e               Entry
		ts, categories  string
		source, outcome string
	)
	if err := sc.Scan(&e.ID, &ts, &e.Query, &categories, &e.ConfidenceScore, &source, &outcome, &e.ElapsedMS); err != nil {
		return nil, err
	}

	e.Source = Source(source)
	e.Outcome = Outcome(outcome)
	if t, err := time.Parse(timeLayout, ts); err == nil {
		e.Timestamp = t
	} else if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		e.Timestamp = t
	}
	if err := json.Unmarshal([]byte(categories), &e.CategoriesMatched); err != nil {
		e.CategoriesMatched = nil
	}
	return &e, nil
}
