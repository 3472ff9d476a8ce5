package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// ErrAuthInvalid is returned when the front-end rejects the access token.
var ErrAuthInvalid = errors.New("websocket authentication rejected")

// authMessage is exchanged during the websocket handshake.
type authMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token,omitempty"`
	Message     string `json:"message,omitempty"`
}

// command is an envelope numbered for the front-end.
type command struct {
	ID int64 `json:"id"`
	Envelope
}

// WebSocket sends envelopes to the front-end over one websocket
// connection. Writes are serialized, so Send may be called from any
// goroutine.
type WebSocket struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	logger *slog.Logger
	done   chan struct{}
}

var _ Sender = (*WebSocket)(nil)

// DialWebSocket connects to the front-end and authenticates with token.
func DialWebSocket(ctx context.Context, url, token string, logger *slog.Logger) (*WebSocket, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}
	if err := authenticate(conn, token); err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	w := &WebSocket{
		conn:   conn,
		logger: logger.With("component", "websocket"),
		done:   make(chan struct{}),
	}
	go w.readLoop()
	return w, nil
}

// readLoop drains command results so pings are answered and the
// front-end never blocks on a full socket. Results are not acted on.
func (w *WebSocket) readLoop() {
	defer close(w.done)
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Debug("connection closed", "error", err)
			}
			return
		}
	}
}

func authenticate(conn *websocket.Conn, token string) error {
	var msg authMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("read auth request: %w", err)
	}
	if msg.Type != "auth_required" {
		return fmt.Errorf("unexpected message %q during handshake", msg.Type)
	}

	if err := conn.WriteJSON(authMessage{Type: "auth", AccessToken: token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("read auth result: %w", err)
	}
	switch msg.Type {
	case "auth_ok":
		return nil
	case "auth_invalid":
		return fmt.Errorf("%w: %s", ErrAuthInvalid, msg.Message)
	default:
		return fmt.Errorf("unexpected message %q during handshake", msg.Type)
	}
}

// Send writes the envelope as a numbered command. Failures are logged.
func (w *WebSocket) Send(env Envelope) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	data, err := json.Marshal(command{ID: w.nextID, Envelope: env})
	if err != nil {
		w.logger.Error("can't encode event", "event", env.Data.Event, "error", err)
		return
	}

	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.logger.Warn("can't send event", "event", env.Data.Event, "name", env.Data.Name, "error", err)
	}
}

// Close sends a close frame, closes the connection and waits for the
// read loop to exit.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	err := w.conn.Close()
	w.mu.Unlock()

	<-w.done
	return err
}
