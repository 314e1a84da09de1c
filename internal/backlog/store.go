package backlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ziadkadry99/helpdesk/internal/db"
)

const timeLayout = "2006-01-02 15:04:05.000"

// ErrNotFound is returned when no question has the requested id.
var ErrNotFound = errors.New("question not found")

// Store manages persistence of unanswered questions.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a new backlog store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Normalize folds case, drops punctuation and collapses whitespace so that
// rephrasings like "Hostel curfew?" and "hostel  curfew" merge.
func Normalize(question string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, question)
	return strings.Join(strings.Fields(clean), " ")
}

// Record adds question to the backlog or, when an equivalent question is
// already there, bumps its ask count. A resolved question that is asked
// again is reopened; a dismissed one stays dismissed.
func (s *Store) Record(ctx context.Context, question, source string) (*Question, error) {
	key := Normalize(question)
	if key == "" {
		return nil, fmt.Errorf("empty question")
	}
	now := s.now().UTC().Format(timeLayout)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unanswered_questions (id, question, normalized, source, first_asked_at, last_asked_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(normalized) DO UPDATE SET
		   ask_count = ask_count + 1,
		   last_asked_at = excluded.last_asked_at,
		   status = CASE WHEN status = 'resolved' THEN 'open' ELSE status END`,
		uuid.New().String(), strings.TrimSpace(question), key, source, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("recording question: %w", err)
	}
	return s.scanOne(s.db.QueryRowContext(ctx, selectColumns+` WHERE normalized = ?`, key))
}

const selectColumns = `SELECT id, question, source, ask_count, status, resolution, resolved_by, resolved_at, first_asked_at, last_asked_at
	FROM unanswered_questions`

// Get retrieves a question by its ID.
func (s *Store) Get(ctx context.Context, id string) (*Question, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
}

// List returns questions matching the filter, most asked first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Question, error) {
	query := selectColumns + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.MinAsked > 0 {
		query += " AND ask_count >= ?"
		args = append(args, filter.MinAsked)
	}

	query += " ORDER BY ask_count DESC, last_asked_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		q, err := scan(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// Resolve marks a question as answered by the records, with a note naming
// what was added.
func (s *Store) Resolve(ctx context.Context, id, resolution, resolvedBy string) error {
	now := s.now().UTC().Format(timeLayout)
	return s.update(ctx,
		`UPDATE unanswered_questions SET status = ?, resolution = ?, resolved_by = ?, resolved_at = ? WHERE id = ?`,
		StatusResolved, resolution, resolvedBy, now, id)
}

// UpdateStatus changes the status of a question.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return s.update(ctx, `UPDATE unanswered_questions SET status = ? WHERE id = ?`, status, id)
}

// CountByStatus returns the number of questions per status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM unanswered_questions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}
	defer rows.Close()

	counts := map[Status]int{StatusOpen: 0, StatusResolved: 0, StatusDismissed: 0}
	for rows.Next() {
		var st Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating question: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanOne(row *sql.Row) (*Question, error) {
	q, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return q, err
}

func scan(sc scanner) (*Question, error) {
	var q Question
	var resolvedAt sql.NullString
	var first, last string
	err := sc.Scan(&q.ID, &q.Question, &q.Source, &q.AskCount, &q.Status, &q.Resolution, &q.ResolvedBy, &resolvedAt, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning question: %w", err)
	}
	q.FirstAskedAt = parseTime(first)
	q.LastAskedAt = parseTime(last)
	if resolvedAt.Valid {
		t := parseTime(resolvedAt.String)
		q.ResolvedAt = &t
	}
	return &q, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
