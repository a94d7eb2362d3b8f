package deepdub

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// newWSServer starts a fake WebSocket endpoint and returns its ws:// URL.
// The handler runs once per connection.
func newWSServer(t *testing.T, handler func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			t.Error("missing x-api-key header on websocket dial")
		}
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer ws.Close()
		handler(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithAPIKey("test-key"),
		WithTimeout(5 * time.Second),
	}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// readJSON reads one message from the fake server side.
func readJSON(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	var msg map[string]any
	if err := ws.ReadJSON(&msg); err != nil {
		t.Errorf("server read: %v", err)
		return nil
	}
	return msg
}

// sendFrame writes one inbound frame from the fake server side.
func sendFrame(t *testing.T, ws *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := ws.WriteJSON(frame); err != nil {
		t.Errorf("server write: %v", err)
	}
}

// dataFrame builds a data-chunk frame with base64-encoded audio.
func dataFrame(generationID string, audio []byte) map[string]any {
	f := map[string]any{"data": base64.StdEncoding.EncodeToString(audio)}
	if generationID != "" {
		f["generationId"] = generationID
	}
	return f
}

// closeCleanly performs the server side of a normal close handshake.
func closeCleanly(ws *websocket.Conn) {
	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	// Wait for the peer's close echo so the handshake completes.
	ws.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// mustJSON round-trips a value for comparison in tests.
func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
