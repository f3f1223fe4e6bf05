package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tomz197/dotdrop/internal/loop/server"
	"github.com/tomz197/dotdrop/internal/object"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*httptest.Server, *server.Registry) {
	t.Helper()
	reg := server.NewRegistry(nil)
	ts := httptest.NewServer(NewServer(Options{Registry: reg}).Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?name=tester"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of type typ arrives and returns it decoded.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad json %q: %v", data, err)
		}
		if msg["type"] == typ && (match == nil || match(msg)) {
			return msg
		}
	}
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func getHealth(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	return body
}

func TestIndexServesPage(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(string(body), "<title>Dot Drop</title>") {
		t.Error("page title missing")
	}
}

func TestHealthCountsWebClients(t *testing.T) {
	ts, reg := newTestServer(t)

	body := getHealth(t, ts)
	if body["status"] != "ok" || body["clients"] != float64(0) {
		t.Errorf("idle health = %v", body)
	}

	conn := dial(t, ts)
	readUntil(t, conn, typeInit, nil)

	body = getHealth(t, ts)
	if body["clients"] != float64(1) {
		t.Errorf("clients = %v, want 1", body["clients"])
	}
	transports, _ := body["transports"].(map[string]any)
	if transports["web"] != float64(1) {
		t.Errorf("transports = %v", body["transports"])
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for reg.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestToggleAndSpeed(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	hello := readUntil(t, conn, typeInit, nil)
	if hello["width"] != float64(400) || hello["height"] != float64(500) {
		t.Errorf("init size = %v x %v", hello["width"], hello["height"])
	}
	if hello["button"] != "Start" || hello["speedLabel"] != "Speed: 5" || hello["speed"] != float64(5) {
		t.Errorf("init = %v", hello)
	}

	writeJSON(t, conn, map[string]any{"type": "toggle"})
	score := readUntil(t, conn, typeScore, nil)
	if score["created"] != true || score["text"] != "Score: 0" {
		t.Errorf("score = %v", score)
	}
	if btn := readUntil(t, conn, typeButton, nil); btn["text"] != "Pause" {
		t.Errorf("button = %v", btn)
	}

	writeJSON(t, conn, map[string]any{"type": "speed", "level": 3})
	if sp := readUntil(t, conn, typeSpeed, nil); sp["text"] != "Speed: 3" {
		t.Errorf("speed = %v", sp)
	}

	// Out-of-range slider values are clamped.
	writeJSON(t, conn, map[string]any{"type": "speed", "level": 99})
	if sp := readUntil(t, conn, typeSpeed, nil); sp["text"] != "Speed: 10" {
		t.Errorf("speed = %v", sp)
	}

	writeJSON(t, conn, map[string]any{"type": "toggle"})
	if btn := readUntil(t, conn, typeButton, nil); btn["text"] != "Start" {
		t.Errorf("button after second toggle = %v", btn)
	}
}

func TestClickScoresDot(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, typeInit, nil)

	writeJSON(t, conn, map[string]any{"type": "speed", "level": 10})
	writeJSON(t, conn, map[string]any{"type": "toggle"})

	spawn := readUntil(t, conn, typeSpawn, nil)
	id := spawn["id"].(float64)
	diameter := int(spawn["diameter"].(float64))
	if spawn["y"] != float64(20) {
		t.Errorf("spawn y = %v, want 20", spawn["y"])
	}

	advance := readUntil(t, conn, typeAdvance, nil)
	moved, _ := advance["dots"].([]any)
	if len(moved) == 0 {
		t.Fatalf("advance = %v, want a dots list", advance)
	}
	for _, d := range moved {
		if pos, ok := d.(map[string]any); !ok || pos["id"] == nil || pos["y"] == nil {
			t.Errorf("advance entry = %v", d)
		}
	}

	writeJSON(t, conn, map[string]any{"type": "click", "id": id})
	readUntil(t, conn, typeRemove, func(m map[string]any) bool { return m["id"] == id })

	want := "Score: " + strconv.Itoa(object.Points(object.ValueFor(diameter)))
	score := readUntil(t, conn, typeScore, func(m map[string]any) bool { return m["created"] == false })
	if score["text"] != want {
		t.Errorf("score = %v, want %q", score["text"], want)
	}
}

func TestBadMessagesAnswered(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, typeInit, nil)

	for _, raw := range []string{`{bad`, `{"type":"speed"}`, `{"type":"jump"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatal(err)
		}
		msg := readUntil(t, conn, typeError, nil)
		if msg["message"] == "" {
			t.Errorf("%s: empty error message", raw)
		}
	}

	// The session survives bad input.
	writeJSON(t, conn, map[string]any{"type": "toggle"})
	if btn := readUntil(t, conn, typeButton, nil); btn["text"] != "Pause" {
		t.Errorf("button = %v", btn)
	}
}

func TestShutdownNotifiesPlayers(t *testing.T) {
	ts, reg := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, typeInit, nil)
	writeJSON(t, conn, map[string]any{"type": "toggle"})
	readUntil(t, conn, typeButton, nil)

	remaining := make(chan int, 1)
	go func() { remaining <- reg.Shutdown(5 * time.Second) }()

	// The running game is paused before the notice.
	if btn := readUntil(t, conn, typeButton, nil); btn["text"] != "Start" {
		t.Errorf("button = %v", btn)
	}
	msg := readUntil(t, conn, typeShutdown, nil)
	if msg["seconds"] != float64(10) {
		t.Errorf("shutdown = %v", msg)
	}

	conn.Close()
	if n := <-remaining; n != 0 {
		t.Errorf("remaining after shutdown = %d", n)
	}
}
