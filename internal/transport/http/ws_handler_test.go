package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blindpick-service/internal/app"
	"blindpick-service/internal/domain"
	"blindpick-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestHostControlFlow(t *testing.T) {
	_, server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "/ws")
	defer conn.Close()

	typ, payload := readNext(conn, t)
	if typ != "ready" {
		t.Fatalf("expected ready, got %s", typ)
	}
	var ready readyPayload
	if err := json.Unmarshal(payload, &ready); err != nil || ready.ShowID == "" {
		t.Fatalf("expected minted show id, got %s err %v", payload, err)
	}

	writeCommand(conn, t, "setup", setupPayload{Players: []string{"Alice", "Bob"}, Pack: "pack-1"})
	writeCommand(conn, t, "answers", answersPayload{Answers: map[string]string{"Alice": "Rome", "Bob": "Madrid"}})
	writeCommand(conn, t, "shuffle", struct{}{})

	snap := readSnapshotUntil(conn, t, func(s domain.ShowSnapshot) bool {
		return len(s.Rows) == 3
	})

	truthRow := -1
	for r, row := range snap.Rows {
		if row.Author == domain.TruthAuthor {
			truthRow = r
		}
	}
	if truthRow < 0 {
		t.Fatalf("host snapshot must show real authors, got %+v", snap.Rows)
	}

	writeCommand(conn, t, "select", selectPayload{Player: "Alice", Row: truthRow})
	writeCommand(conn, t, "reveal", rowPayload{Row: truthRow})

	delta := readDelta(conn, t)
	if delta["Alice"] != 1 || len(delta) != 1 {
		t.Fatalf("expected Alice +1, got %v", delta)
	}

	snap = readSnapshotUntil(conn, t, func(s domain.ShowSnapshot) bool {
		return s.Scores["Alice"] == 1
	})
	if !snap.Rows[truthRow].Revealed {
		t.Fatalf("expected truth row revealed in snapshot")
	}
}

func TestRevealBeforeShuffleReturnsGuidance(t *testing.T) {
	_, server := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "/ws")
	defer conn.Close()

	if typ, _ := readNext(conn, t); typ != "ready" {
		t.Fatalf("expected ready first")
	}
	writeCommand(conn, t, "reveal", rowPayload{Row: 0})

	for i := 0; i < 5; i++ {
		typ, payload := readNext(conn, t)
		if typ != "error" {
			continue
		}
		var msg errorPayload
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode error payload: %v", err)
		}
		if msg.Message != domain.ErrNoShuffle.Error() {
			t.Fatalf("expected shuffle guidance, got %q", msg.Message)
		}
		return
	}
	t.Fatalf("expected an error message")
}

func TestAudienceSeesMaskedAuthors(t *testing.T) {
	service, server := newTestServer(t)
	defer server.Close()

	ctx := context.Background()
	service.Open(ctx, "show-1")
	if _, err := service.Setup(ctx, "show-1", "pack-1", []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := service.Shuffle(ctx, "show-1"); err != nil {
		t.Fatalf("shuffle: %v", err)
	}

	conn := dial(t, server, "/ws?show=show-1&role=audience")
	defer conn.Close()

	snap := readSnapshotUntil(conn, t, func(s domain.ShowSnapshot) bool {
		return len(s.Rows) == 3
	})
	for r, row := range snap.Rows {
		if row.Author != domain.HiddenAuthor {
			t.Fatalf("expected row %d author hidden from audience, got %q", r, row.Author)
		}
	}
}

func TestAudienceRequiresShowID(t *testing.T) {
	_, server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?role=audience"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
}

func TestJoinQRServesPNG(t *testing.T) {
	_, server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/shows/show-1/qr")
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected png, got %q", got)
	}
}

func newTestServer(t *testing.T) (*app.ShowService, *httptest.Server) {
	t.Helper()
	store := memory.NewSessionStore()
	packRepo := memory.NewPackRepository(memory.NewStaticPackLoader(map[string]domain.Pack{
		"pack-1": {
			ID: "pack-1",
			Rounds: []domain.RoundTemplate{
				{Title: "Capitals", Video: "clips/capitals.mp4", Truth: "Paris"},
				{Title: "Rivers", Video: "clips/rivers.mp4", Truth: "Danube"},
			},
		},
	}), time.Minute)
	service := app.NewShowService(store, packRepo)
	return service, httptest.NewServer(NewRouter(service))
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	return conn
}

func writeCommand(conn *websocket.Conn, t *testing.T, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

// readSnapshotUntil drains messages until a snapshot satisfies the predicate.
func readSnapshotUntil(conn *websocket.Conn, t *testing.T, ok func(domain.ShowSnapshot) bool) domain.ShowSnapshot {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ != "snapshot" {
			continue
		}
		var snap domain.ShowSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if ok(snap) {
			return snap
		}
	}
	t.Fatalf("never received the expected snapshot")
	return domain.ShowSnapshot{}
}

func readDelta(conn *websocket.Conn, t *testing.T) domain.ScoreDelta {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ != "scoreDelta" {
			continue
		}
		var delta domain.ScoreDelta
		if err := json.Unmarshal(payload, &delta); err != nil {
			t.Fatalf("decode delta: %v", err)
		}
		return delta
	}
	t.Fatalf("never received a score delta")
	return nil
}
