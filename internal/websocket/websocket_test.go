package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/services"
	"github.com/vaquejada/senhas/internal/testutil"
)

type stubSummaries struct {
	err error
}

func (s *stubSummaries) Summary(ctx context.Context, eventID int) (*services.VoteSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.VoteSummary{EventID: eventID, ActiveJudges: 3}, nil
}

func startHub(t *testing.T, summaries SummarySource) (*Hub, string) {
	t.Helper()
	hub := New(testutil.NewLogger(), summaries)
	hub.Start()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)
	return hub, "ws" + server.URL[4:]
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	return msg
}

func clientCount(h *Hub) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func TestHub_ImplementsBroadcaster(t *testing.T) {
	var b services.Broadcaster = New(testutil.NewLogger(), nil)
	if b == nil {
		t.Fatal("expected hub")
	}
}

func TestServeWs_SnapshotOnSubscribe(t *testing.T) {
	_, url := startHub(t, &stubSummaries{})
	ws := dial(t, url+"?event=7")

	msg := readMessage(t, ws)
	if msg.Type != TypeVoteSummary {
		t.Fatalf("expected %s, got %s", TypeVoteSummary, msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["event_id"] != float64(7) || payload["active_judges"] != float64(3) {
		t.Errorf("unexpected payload %v", msg.Payload)
	}
}

func TestServeWs_SnapshotErrorIsSkipped(t *testing.T) {
	hub, url := startHub(t, &stubSummaries{err: errors.New("db down")})
	ws := dial(t, url+"?event=7")
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastSlotsUpdated(7, 2, []int{4})

	if msg := readMessage(t, ws); msg.Type != TypeSlotsUpdated {
		t.Errorf("expected %s first, got %s", TypeSlotsUpdated, msg.Type)
	}
}

func TestServeWs_InvalidEventParam(t *testing.T) {
	hub := New(testutil.NewLogger(), nil)
	req := httptest.NewRequest(http.MethodGet, "/ws?event=abc", nil)
	w := httptest.NewRecorder()

	hub.ServeWs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHub_BroadcastFiltersByEvent(t *testing.T) {
	hub, url := startHub(t, nil)
	watcher := dial(t, url+"?event=1")
	other := dial(t, url+"?event=2")
	all := dial(t, url)
	time.Sleep(100 * time.Millisecond)

	if n := clientCount(hub); n != 3 {
		t.Fatalf("expected 3 clients, got %d", n)
	}

	hub.BroadcastSlotsUpdated(1, 5, []int{3, 9})

	msg := readMessage(t, watcher)
	if msg.Type != TypeSlotsUpdated {
		t.Fatalf("expected %s, got %s", TypeSlotsUpdated, msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["category_id"] != float64(5) {
		t.Errorf("unexpected payload %v", msg.Payload)
	}
	if msg := readMessage(t, all); msg.Type != TypeSlotsUpdated {
		t.Errorf("expected unfiltered client to receive %s, got %s", TypeSlotsUpdated, msg.Type)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("expected client of another event to receive nothing")
	}
}

func TestHub_BroadcastVoteSummary(t *testing.T) {
	hub, url := startHub(t, nil)
	ws := dial(t, url+"?event=4")
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastVoteSummary(4, &services.VoteSummary{EventID: 4, ValidVotes: 2})

	msg := readMessage(t, ws)
	payload, _ := msg.Payload.(map[string]interface{})
	if msg.Type != TypeVoteSummary || payload["valid_votes"] != float64(2) {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	hub, url := startHub(t, nil)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	ws.Close()
	time.Sleep(200 * time.Millisecond)

	if n := clientCount(hub); n != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", n)
	}
}

func TestHub_MultipleInstances_NoGlobalState(t *testing.T) {
	a := New(testutil.NewLogger(), nil)
	b := New(testutil.NewLogger(), nil)

	if a.clients == nil || b.clients == nil {
		t.Fatal("expected client maps to be initialized")
	}
	if a.broadcast == b.broadcast {
		t.Error("expected separate broadcast channels")
	}
}
