package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientCommand is the incoming websocket frame.
type clientCommand struct {
	Type    string `json:"type"` // "message" or "input"
	Content string `json:"content"`
}

// serverFrame is the outgoing websocket frame.
type serverFrame struct {
	Type      string              `json:"type"` // "state" or "error"
	SessionID string              `json:"session_id"`
	State     *conversation.State `json:"state,omitempty"`
	Content   string              `json:"content,omitempty"`
}

// wsSendBuffer bounds the frames queued for one connection.
const wsSendBuffer = 16

// wsConn queues outgoing frames for a single writer goroutine, so a slow
// client never blocks the conversation that publishes to it. When the queue
// is full the oldest frame is dropped; every state frame carries the whole
// state, so the client still converges on the latest one.
type wsConn struct {
	conn      *websocket.Conn
	sessionID string
	logger    *slog.Logger
	out       chan serverFrame
	done      chan struct{}
}

func newWSConn(conn *websocket.Conn, sessionID string, logger *slog.Logger) *wsConn {
	return &wsConn{
		conn:      conn,
		sessionID: sessionID,
		logger:    logger,
		out:       make(chan serverFrame, wsSendBuffer),
		done:      make(chan struct{}),
	}
}

// enqueue never blocks.
func (c *wsConn) enqueue(f serverFrame) {
	f.SessionID = c.sessionID
	select {
	case c.out <- f:
		return
	case <-c.done:
		return
	default:
	}

	select {
	case <-c.out:
		c.logger.Debug("websocket client lagging, dropped oldest frame", "session", c.sessionID)
	default:
	}
	select {
	case c.out <- f:
	default:
		c.logger.Debug("websocket frame dropped", "session", c.sessionID, "type", f.Type)
	}
}

// writeLoop is the only writer on conn. A failed write closes conn, which
// ends the read loop.
func (c *wsConn) writeLoop() {
	for {
		select {
		case f := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(f); err != nil {
				c.logger.Debug("websocket write failed", "session", c.sessionID, "error", err)
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// handleWebSocket streams state snapshots of one session. The session is
// taken from ?session_id= or created when absent.
func handleWebSocket(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		s := m.GetOrCreate(r.URL.Query().Get("session_id"))
		ws := newWSConn(conn, s.ID, m.logger)

		var writer sync.WaitGroup
		writer.Add(1)
		go func() {
			defer writer.Done()
			ws.writeLoop()
		}()
		defer writer.Wait()
		defer close(ws.done)

		unsubscribe := s.Controller.Subscribe(func(st conversation.State) {
			ws.enqueue(serverFrame{Type: "state", State: &st})
		})
		defer unsubscribe()

		initial := s.Controller.Snapshot()
		ws.enqueue(serverFrame{Type: "state", State: &initial})

		// Replies outlive the socket; the session keeps them for the next
		// connection.
		ctx := context.WithoutCancel(r.Context())
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					m.logger.Warn("websocket read failed", "session", s.ID, "error", err)
				}
				return
			}

			var cmd clientCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				ws.enqueue(serverFrame{Type: "error", Content: "invalid message format"})
				continue
			}

			switch cmd.Type {
			case "message":
				if _, ok := s.Controller.Send(ctx, cmd.Content); !ok {
					ws.enqueue(serverFrame{Type: "error", Content: "message rejected: empty or a reply is pending"})
				}
			case "input":
				s.Controller.SetInput(cmd.Content)
			default:
				ws.enqueue(serverFrame{Type: "error", Content: "unknown message type: " + cmd.Type})
			}
		}
	}
}
