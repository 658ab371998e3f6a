package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/infra/memory"
	"verbiverse-quiz/internal/infra/wallet"
)

func newTestServer(t *testing.T, chainID uint64) *httptest.Server {
	t.Helper()
	progress := memory.NewProgressStore()
	sessions := memory.NewSessionStore(progress)
	batches := memory.NewBatchRepository(memory.NewStaticBatchLoader(memory.DemoBatches()), 3)
	service := app.NewQuizService(sessions, batches, progress, nil, 3)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, chainID).ServeWS)
	NewAPIHandler(service).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil skips messages until one of type typ arrives; snapshots interleave freely.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg message
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == typ {
			return msg.Payload
		}
		if msg.Type == "error" && typ != "error" {
			t.Fatalf("unexpected error while waiting for %s: %s", typ, msg.Payload)
		}
	}
	t.Fatalf("no %s message received", typ)
	return nil
}

func readView(t *testing.T, conn *websocket.Conn) app.ViewMode {
	t.Helper()
	var view viewPayload
	if err := json.Unmarshal(readUntil(t, conn, "view"), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view.Mode
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	server := newTestServer(t, 0)
	conn := dial(t, server, "address="+wallet.DemoAddress)

	var connected connectedPayload
	if err := json.Unmarshal(readUntil(t, conn, "connected"), &connected); err != nil {
		t.Fatalf("decode connected: %v", err)
	}
	if !strings.EqualFold(connected.Address, wallet.DemoAddress) || len(connected.LanguagePairs) != 6 {
		t.Fatalf("unexpected connected payload %+v", connected)
	}
	if mode := readView(t, conn); mode != app.ModeHome {
		t.Fatalf("expected home, got %s", mode)
	}

	send(t, conn, "start", map[string]any{"languagePair": "English → Spanish", "batchId": 1})
	if mode := readView(t, conn); mode != app.ModeQuiz {
		t.Fatalf("expected quiz, got %s", mode)
	}

	send(t, conn, "next", nil)
	readUntil(t, conn, "error") // blank answer

	send(t, conn, "answer", map[string]any{"index": 0, "text": "hola!"})
	readView(t, conn)
	send(t, conn, "next", nil)
	readView(t, conn)
	send(t, conn, "answer", map[string]any{"index": 1, "text": "Adios"})
	readView(t, conn)

	send(t, conn, "complete", nil)
	var result app.FinishResult
	if err := json.Unmarshal(readUntil(t, conn, "result"), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Session.Score == nil || *result.Session.Score != 20 {
		t.Fatalf("expected score 20, got %+v", result.Session.Score)
	}
	if mode := readView(t, conn); mode != app.ModeResults {
		t.Fatalf("expected results, got %s", mode)
	}

	send(t, conn, "history", nil)
	var history historyPayload
	if err := json.Unmarshal(readUntil(t, conn, "history"), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Local) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.Local))
	}
	if mode := readView(t, conn); mode != app.ModeHistory {
		t.Fatalf("expected history, got %s", mode)
	}
}

func TestWebSocketRejectsWrongNetwork(t *testing.T) {
	server := newTestServer(t, 1135)
	conn := dial(t, server, "address="+wallet.DemoAddress+"&chainId=1")
	readUntil(t, conn, "connected")

	send(t, conn, "start", map[string]any{"batchId": 1})
	var payload errorPayload
	if err := json.Unmarshal(readUntil(t, conn, "error"), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(payload.Message, "wrong network") {
		t.Fatalf("expected wrong network error, got %q", payload.Message)
	}
}

func TestWebSocketSharesStateAcrossTabs(t *testing.T) {
	server := newTestServer(t, 0)
	first := dial(t, server, "address="+wallet.DemoAddress)
	readUntil(t, first, "connected")
	second := dial(t, server, "address="+wallet.DemoAddress)
	readUntil(t, second, "connected")

	send(t, first, "start", map[string]any{"batchId": 2})
	for i := 0; i < 20; i++ {
		var snap struct {
			Session *struct {
				BatchID int `json:"batchId"`
			} `json:"session"`
		}
		if err := json.Unmarshal(readUntil(t, second, "snapshot"), &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.Session != nil {
			if snap.Session.BatchID != 2 {
				t.Fatalf("expected batch 2, got %d", snap.Session.BatchID)
			}
			return
		}
	}
	t.Fatalf("second tab never saw the session")
}

func TestServeWSRequiresAddress(t *testing.T) {
	server := newTestServer(t, 0)
	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSendsDoNotBlockAfterWriterStops(t *testing.T) {
	send := make(chan outboundMessage[any])
	writerDone := make(chan struct{})
	close(writerDone)
	c := &wsConn{send: send, done: writerDone, view: app.NewViewController()}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 20; i++ {
			c.sendError(errBlankAnswer)
		}
		if c.push(outboundMessage[any]{Type: "view"}) {
			t.Errorf("expected message dropped after writer stopped")
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("sends blocked with no writer")
	}
}
