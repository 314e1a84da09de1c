// Package conversation owns the message log of one chat and runs the
// retrieve, compose and complete cycle for each accepted user message.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/helpdesk/internal/gateway"
	"github.com/ziadkadry99/helpdesk/internal/prompt"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

var (
	// ErrEmptyInput is returned by Ask for blank text.
	ErrEmptyInput = errors.New("message text is empty")
	// ErrBusy is returned by Ask while a previous message is being answered.
	ErrBusy = errors.New("a response is already in progress")
)

// Retriever ranks knowledge entries for a query.
type Retriever interface {
	Retrieve(query string) []retrieval.ScoredEntry
}

// Composer renders the instruction block for a query and its context.
type Composer interface {
	Compose(query string, entries []retrieval.ScoredEntry) string
}

// Gateway performs the generation call. It must not return an error; every
// failure is already a displayable Response.
type Gateway interface {
	Complete(ctx context.Context, prompt string, entries []retrieval.ScoredEntry) gateway.Response
}

// Turn describes one finished cycle. It is passed to the turn hook.
type Turn struct {
	Query   string
	Entries []retrieval.ScoredEntry
	Reply   Message
	// Refused is true when nothing was retrieved and no generation call was made.
	Refused bool
	// Failed is true when the generation call failed.
	Failed  bool
	Elapsed time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the UUIDv7 message id generator.
func WithIDGenerator(next func() string) Option {
	return func(c *Controller) { c.nextID = next }
}

// WithLogger sets the logger used for cycle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTurnHook registers fn to run after every finished cycle, before the
// reply is delivered. Multiple hooks run in registration order.
func WithTurnHook(fn func(Turn)) Option {
	return func(c *Controller) {
		prev := c.onTurn
		if prev == nil {
			c.onTurn = fn
			return
		}
		c.onTurn = func(t Turn) {
			prev(t)
			fn(t)
		}
	}
}

// Controller holds one conversation. It is safe for concurrent use; at most
// one cycle is in flight at any time.
type Controller struct {
	retriever Retriever
	composer  Composer
	gateway   Gateway

	now    func() time.Time
	nextID func() string
	logger *slog.Logger
	onTurn func(Turn)

	// notifyMu serializes state changes with their notifications so that
	// subscribers observe states in order.
	notifyMu sync.Mutex

	mu          sync.Mutex
	messages    []Message
	pending     string
	waiting     bool
	subscribers map[int]func(State)
	nextSub     int

	inflight sync.WaitGroup
}

// New creates a Controller whose log holds only the welcome message.
func New(r Retriever, c Composer, g Gateway, opts ...Option) *Controller {
	ctrl := &Controller{
		retriever:   r,
		composer:    c,
		gateway:     g,
		now:         time.Now,
		nextID:      newMessageID,
		logger:      slog.New(slog.DiscardHandler),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	ctrl.messages = []Message{ctrl.newMessage(RoleAssistant, WelcomeText, nil)}
	return ctrl
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (c *Controller) newMessage(role Role, text string, sources []string) Message {
	if role == RoleAssistant && sources == nil {
		sources = []string{}
	}
	return Message{
		ID:        c.nextID(),
		Role:      role,
		Text:      text,
		Timestamp: c.now(),
		Sources:   sources,
	}
}

// Messages returns a copy of the message log in append order.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneMessages(c.messages)
}

// PendingInput returns the text typed but not yet sent.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// IsWaiting reports whether a cycle is in flight.
func (c *Controller) IsWaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting
}

// Snapshot returns a copy of the whole state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Messages:     cloneMessages(c.messages),
		PendingInput: c.pending,
		IsWaiting:    c.waiting,
	}
}

// SetInput replaces the pending input.
func (c *Controller) SetInput(text string) {
	c.update(func() bool {
		if c.pending == text {
			return false
		}
		c.pending = text
		return true
	})
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously on the goroutine that made the change. It must not
// block or call SetInput or Send. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// update applies mutate under the state lock and notifies subscribers when
// it reports a change.
func (c *Controller) update(mutate func() bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if !mutate() {
		c.mu.Unlock()
		return
	}
	state := c.snapshotLocked()
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Send accepts text as the next user message and starts a cycle in the
// background. It reports false, changing nothing, when the trimmed text is
// empty or a cycle is already in flight. The returned channel receives the
// assistant reply and is then closed.
//
// The cycle is detached from ctx cancellation; only ctx values are kept.
func (c *Controller) Send(ctx context.Context, text string) (<-chan Message, bool) {
	accepted := false
	c.update(func() bool {
		if strings.TrimSpace(text) == "" || c.waiting {
			return false
		}
		c.messages = append(c.messages, c.newMessage(RoleUser, text, nil))
		c.pending = ""
		c.waiting = true
		accepted = true
		return true
	})
	if !accepted {
		return nil, false
	}

	reply := make(chan Message, 1)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(reply)
		reply <- c.run(context.WithoutCancel(ctx), text)
	}()
	return reply, true
}

// Ask sends text and blocks until the reply is appended.
func (c *Controller) Ask(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyInput
	}
	reply, ok := c.Send(ctx, text)
	if !ok {
		return Message{}, ErrBusy
	}
	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Wait blocks until no cycle is in flight.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// run executes one cycle and returns the appended reply. It leaves the
// controller idle on every path, including a panic in a collaborator.
func (c *Controller) run(ctx context.Context, query string) (reply Message) {
	start := time.Now()
	turn := Turn{Query: query}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("conversation cycle panicked", "panic", fmt.Sprint(r))
			turn.Failed = true
			reply = c.newMessage(RoleAssistant, gateway.ApologyText, nil)
		}
		c.update(func() bool {
			c.messages = append(c.messages, reply)
			c.waiting = false
			return true
		})
		turn.Reply = reply
		turn.Elapsed = time.Since(start)
		if c.onTurn != nil {
			c.onTurn(turn)
		}
	}()

	turn.Entries = c.retriever.Retrieve(query)
	if len(turn.Entries) == 0 {
		c.logger.Debug("no relevant records", "query", query)
		turn.Refused = true
		return c.newMessage(RoleAssistant, prompt.RefusalText, nil)
	}

	resp := c.gateway.Complete(ctx, c.composer.Compose(query, turn.Entries), turn.Entries)
	turn.Failed = !resp.OK
	return c.newMessage(RoleAssistant, resp.Text, resp.Sources)
}
