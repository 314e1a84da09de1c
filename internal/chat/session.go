package chat

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
)

// DefaultMaxSessions bounds the session cache when no size is configured.
const DefaultMaxSessions = 256

// Session is one live conversation.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *conversation.Controller
}

// Manager keeps the most recently used sessions in memory. The least
// recently used session is dropped once the cache is full.
type Manager struct {
	pipeline Pipeline
	logger   *slog.Logger
	now      func() time.Time
	cache    *lru.Cache[string, *Session]
}

// NewManager creates a Manager holding at most size sessions.
func NewManager(pipeline Pipeline, size int, logger *slog.Logger) (*Manager, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{pipeline: pipeline, logger: logger, now: time.Now}
	cache, err := lru.NewWithEvict(size, func(id string, s *Session) {
		m.logger.Info("chat session evicted", "session", id, "messages", len(s.Controller.Messages()))
	})
	if err != nil {
		return nil, err
	}
	m.cache = cache
	return m, nil
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  m.now(),
		Controller: m.pipeline.NewController(querylog.SourceChat),
	}
	m.cache.Add(s.ID, s)
	m.logger.Debug("chat session created", "session", s.ID)
	return s
}

// Get returns the session with id, marking it recently used.
func (m *Manager) Get(id string) (*Session, bool) {
	return m.cache.Get(id)
}

// GetOrCreate returns the session with id, or a new one when id is empty or
// unknown.
func (m *Manager) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s
		}
	}
	return m.Create()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Wait blocks until every live session is idle.
func (m *Manager) Wait() {
	for _, s := range m.cache.Values() {
		s.Controller.Wait()
	}
}
