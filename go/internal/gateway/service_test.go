package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdev12/eightypercent/go/internal/game"
	"github.com/mcdev12/eightypercent/go/internal/game/events"
	"github.com/mcdev12/eightypercent/go/internal/publish"
)

type channelPublisher struct {
	events chan publish.Event
}

func (p *channelPublisher) Publish(ctx context.Context, event publish.Event) error {
	select {
	case p.events <- event:
	default:
	}
	return nil
}

func (p *channelPublisher) Close() error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *channelPublisher, *publish.CounterMetrics) {
	t.Helper()
	pub := &channelPublisher{events: make(chan publish.Event, 64)}
	metrics := publish.NewCounterMetrics()

	cfg := DefaultConfig()
	cfg.Metrics = metrics
	svc := NewService(cfg, game.DefaultRules(), pub)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, pub, metrics
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) GameEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev GameEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}

func sendJSON(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func getState(t *testing.T, srv *httptest.Server) GameStateResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/game/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var state GameStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestGatewayJoinFlow(t *testing.T) {
	srv, pub, metrics := newTestServer(t)
	conn := dial(t, srv)

	sendJSON(t, conn, `{"type":"join","data":{"name":"alice"}}`)

	success := readEvent(t, conn)
	if success.Type != events.EventTypeJoinSuccess {
		t.Fatalf("expected joinSuccess, got %s", success.Type)
	}
	var joined events.JoinSuccessPayload
	if err := json.Unmarshal(success.Data, &joined); err != nil {
		t.Fatalf("decode joinSuccess: %v", err)
	}
	if joined.PlayerID == "" {
		t.Fatal("expected a player id")
	}

	list := readEvent(t, conn)
	if list.Type != events.EventTypePlayerList {
		t.Fatalf("expected playerList, got %s", list.Type)
	}

	select {
	case ev := <-pub.events:
		if ev.EventType != string(events.EventTypePlayerList) || ev.ID != list.ID {
			t.Fatalf("expected published playerList %s, got %s %s", list.ID, ev.EventType, ev.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected playerList to be published")
	}
	waitFor(t, func() bool { return metrics.Stats().Published == 1 })

	state := getState(t, srv)
	if len(state.Players) != 1 || state.Players[0].ID != joined.PlayerID {
		t.Fatalf("expected joined player in state, got %+v", state.Players)
	}
	if state.TimeRemaining != nil {
		t.Fatalf("expected no time remaining in lobby, got %d", *state.TimeRemaining)
	}
}

func TestGatewayDuplicateNameRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)
	first := dial(t, srv)
	second := dial(t, srv)

	sendJSON(t, first, `{"type":"join","data":{"name":"alice"}}`)
	readEvent(t, first) // joinSuccess
	readEvent(t, first) // playerList

	sendJSON(t, second, `{"type":"join","data":{"name":"Alice"}}`)
	// skip the broadcast player list if it raced ahead
	ev := readEvent(t, second)
	if ev.Type == events.EventTypePlayerList {
		ev = readEvent(t, second)
	}
	if ev.Type != events.EventTypeJoinError {
		t.Fatalf("expected joinError, got %s", ev.Type)
	}
	var payload events.JoinErrorPayload
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		t.Fatalf("decode joinError: %v", err)
	}
	if payload.Reason != game.ErrUsernameTaken.Error() {
		t.Fatalf("expected %q, got %q", game.ErrUsernameTaken.Error(), payload.Reason)
	}
}

func TestGatewayDisconnectLeaves(t *testing.T) {
	srv, _, _ := newTestServer(t)
	conn := dial(t, srv)

	sendJSON(t, conn, `{"type":"join","data":{"name":"alice"}}`)
	readEvent(t, conn)
	readEvent(t, conn)
	conn.Close()

	waitFor(t, func() bool { return len(getState(t, srv).Players) == 0 })
}

func TestStateHandlerRejectsNonGet(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/game/state", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

type brokerPublisher struct {
	channelPublisher
	connected bool
}

func (p *brokerPublisher) Connected() bool { return p.connected }

func TestServiceStatsReportPublisherLink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics = publish.NewCounterMetrics()

	plain := NewService(cfg, game.DefaultRules(), publish.NewLogPublisher())
	if _, ok := plain.GetStats()["publisher_connected"]; ok {
		t.Fatal("log publisher has no broker link to report")
	}

	broker := &brokerPublisher{connected: true}
	stats := NewService(cfg, game.DefaultRules(), broker).GetStats()
	if got, ok := stats["publisher_connected"].(bool); !ok || !got {
		t.Fatalf("expected publisher_connected true, got %v", stats["publisher_connected"])
	}
	if _, ok := stats["publish"]; !ok {
		t.Fatalf("expected publish stats, got %v", stats)
	}
}
