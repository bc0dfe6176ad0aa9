package ws

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newServer(t *testing.T, origin string, logs *syncBuffer) string {
	t.Helper()
	e := echo.New()
	g := NewGateway(origin, zerolog.New(logs))
	e.GET("/ws/whatsapp", g.Handle)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/whatsapp"
}

func waitFor(t *testing.T, logs *syncBuffer, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(logs.String(), msg) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("log %q not seen; got:\n%s", msg, logs.String())
}

func TestGatewayLogsConnectAndDisconnect(t *testing.T) {
	logs := &syncBuffer{}
	url := newServer(t, "http://localhost:3000", logs)

	hdr := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, logs, "client connected")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"ignored"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitFor(t, logs, "client disconnected")
	if !strings.Contains(logs.String(), `"namespace":"whatsapp"`) {
		t.Errorf("logs missing namespace field: %s", logs.String())
	}
}

func TestGatewayRejectsForeignOrigin(t *testing.T) {
	logs := &syncBuffer{}
	url := newServer(t, "http://localhost:3000", logs)

	hdr := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp = %v, want 403", resp)
	}
}

func TestNormalizeOrigin(t *testing.T) {
	tests := map[string]string{
		"http://localhost:3000/":    "http://localhost:3000",
		"HTTPS://App.Example.com":   "https://app.example.com",
		"https://app.example.com/x": "https://app.example.com",
	}
	for in, want := range tests {
		if got := normalizeOrigin(in); got != want {
			t.Errorf("normalizeOrigin(%q) = %q, want %q", in, got, want)
		}
	}
}
