package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ziadkadry99/helpdesk/internal/backlog"
	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/db"
	"github.com/ziadkadry99/helpdesk/internal/gateway"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/prompt"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubGateway answers with a fixed text. When release is set each call
// blocks until it is closed.
type stubGateway struct {
	release chan struct{}
}

func (g *stubGateway) Complete(ctx context.Context, p string, entries []retrieval.ScoredEntry) gateway.Response {
	if g.release != nil {
		<-g.release
	}
	return gateway.Response{Text: "The semester fee is PKR 45,000.", Sources: retrieval.Citations(entries), OK: true}
}

func newPipeline(gw conversation.Gateway, rec *querylog.Recorder) Pipeline {
	return Pipeline{
		Retriever: retrieval.New(knowledge.Builtin(), 0),
		Composer:  prompt.NewComposer(prompt.DefaultInstitution),
		Gateway:   gw,
		Recorder:  rec,
	}
}

func newManager(t *testing.T, gw conversation.Gateway, size int) *Manager {
	t.Helper()
	m, err := NewManager(newPipeline(gw, nil), size, nil)
	require.NoError(t, err)
	t.Cleanup(m.Wait)
	return m
}

func newRouter(m *Manager) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, m)
	RegisterWebSocket(r, m)
	return r
}

func TestManagerEvictsLeastRecentlyUsed(t *testing.T) {
	m := newManager(t, &stubGateway{}, 2)

	a := m.Create()
	b := m.Create()
	_, ok := m.Get(a.ID) // a is now most recently used
	require.True(t, ok)
	m.Create()

	assert.Equal(t, 2, m.Len())
	_, ok = m.Get(b.ID)
	assert.False(t, ok)
	_, ok = m.Get(a.ID)
	assert.True(t, ok)
}

func TestGetOrCreate(t *testing.T) {
	m := newManager(t, &stubGateway{}, 0)

	s := m.GetOrCreate("")
	assert.Same(t, s, m.GetOrCreate(s.ID))
	assert.NotEqual(t, s.ID, m.GetOrCreate("unknown").ID)
}

func TestPipelineLogsTurns(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	defer database.Close()
	store := querylog.NewStore(database)

	pipeline := newPipeline(&stubGateway{}, querylog.NewRecorder(store, nil))
	pipeline.Backlog = backlog.NewStore(database)
	c := pipeline.NewController(querylog.SourceMCP)
	_, err = c.Ask(context.Background(), "semester fees structure")
	require.NoError(t, err)
	_, err = c.Ask(context.Background(), "hostel curfew")
	require.NoError(t, err)

	entries, err := store.Query(context.Background(), querylog.Filter{Source: querylog.SourceMCP})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byQuery := map[string]querylog.Entry{}
	for _, e := range entries {
		byQuery[e.Query] = e
	}
	assert.Equal(t, querylog.OutcomeRefused, byQuery["hostel curfew"].Outcome)
	answered := byQuery["semester fees structure"]
	assert.Equal(t, querylog.OutcomeAnswered, answered.Outcome)
	assert.Equal(t, []string{"Fee Structure", "Admissions"}, answered.CategoriesMatched)

	unanswered, err := pipeline.Backlog.List(context.Background(), backlog.ListFilter{})
	require.NoError(t, err)
	require.Len(t, unanswered, 1)
	assert.Equal(t, "hostel curfew", unanswered[0].Question)
	assert.Equal(t, "mcp", unanswered[0].Source)
}

func TestCreateAndGetSession(t *testing.T) {
	r := newRouter(newManager(t, &stubGateway{}, 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.State.Messages, 1)
	assert.Equal(t, conversation.WelcomeText, created.State.Messages[0].Text)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/sessions/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/sessions/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func postMessage(r http.Handler, id, query, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/sessions/"+id+"/messages"+query, bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	return w
}

func TestSendAndWait(t *testing.T) {
	m := newManager(t, &stubGateway{}, 0)
	r := newRouter(m)
	s := m.Create()

	w := postMessage(r, s.ID, "?wait=true", `{"text":"semester fees structure"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got replyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, s.ID, got.SessionID)
	assert.Equal(t, conversation.RoleAssistant, got.Message.Role)
	assert.Equal(t, "The semester fee is PKR 45,000.", got.Message.Text)
	assert.NotEmpty(t, got.Message.Sources)
	assert.Equal(t, "<p>The semester fee is PKR 45,000.</p>\n", got.HTML)

	assert.Len(t, s.Controller.Messages(), 3)
}

func TestSendRejections(t *testing.T) {
	gw := &stubGateway{release: make(chan struct{})}
	m := newManager(t, gw, 0)
	r := newRouter(m)
	s := m.Create()

	assert.Equal(t, http.StatusBadRequest, postMessage(r, s.ID, "", `{"text":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, postMessage(r, s.ID, "", `{`).Code)
	assert.Equal(t, http.StatusNotFound, postMessage(r, "missing", "", `{"text":"fees"}`).Code)

	w := postMessage(r, s.ID, "", `{"text":"semester fees"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var view sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.State.IsWaiting)

	assert.Equal(t, http.StatusConflict, postMessage(r, s.ID, "", `{"text":"convocation"}`).Code)

	close(gw.release)
	s.Controller.Wait()
	assert.False(t, s.Controller.IsWaiting())
	assert.Len(t, s.Controller.Messages(), 3)
}

func readState(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f serverFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketStreamsState(t *testing.T) {
	m := newManager(t, &stubGateway{}, 0)
	srv := httptest.NewServer(newRouter(m))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readState(t, conn)
	require.Equal(t, "state", first.Type)
	require.NotNil(t, first.State)
	assert.Len(t, first.State.Messages, 1)
	_, ok := m.Get(first.SessionID)
	assert.True(t, ok)

	require.NoError(t, conn.WriteJSON(clientCommand{Type: "bogus"}))
	assert.Equal(t, "error", readState(t, conn).Type)

	require.NoError(t, conn.WriteJSON(clientCommand{Type: "message", Content: "When is the convocation?"}))

	var last serverFrame
	for {
		last = readState(t, conn)
		require.Equal(t, "state", last.Type)
		if !last.State.IsWaiting {
			break
		}
	}
	require.Len(t, last.State.Messages, 3)
	reply, ok := last.State.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "The semester fee is PKR 45,000.", reply.Text)
}

func TestWebSocketQueueNeverBlocks(t *testing.T) {
	ws := newWSConn(nil, "s1", slog.New(slog.DiscardHandler))

	// No writer is draining, as with a stalled client.
	for i := 0; i < wsSendBuffer+3; i++ {
		ws.enqueue(serverFrame{Type: "state", Content: strconv.Itoa(i)})
	}
	require.Len(t, ws.out, wsSendBuffer)

	var got []string
	for len(ws.out) > 0 {
		f := <-ws.out
		assert.Equal(t, "s1", f.SessionID)
		got = append(got, f.Content)
	}
	assert.Equal(t, "3", got[0])
	assert.Equal(t, strconv.Itoa(wsSendBuffer+2), got[len(got)-1])

	close(ws.done)
	ws.enqueue(serverFrame{Type: "state"})
}
