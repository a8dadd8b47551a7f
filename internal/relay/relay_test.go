package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	devtools "github.com/goliatone/go-devtools"
	"github.com/goliatone/go-devtools/extension/remote"
	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestRelayTracksSessions(t *testing.T) {
	server := NewServer(zerolog.Nop())
	httpServer := httptest.NewServer(server.Handler("/ws"))
	t.Cleanup(httpServer.Close)

	ext := remote.New("ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws")
	conn, err := ext.Connect(devtools.ConnectOptions{Name: "flights"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := conn.Send(devtools.Action{Type: "[Flights] add"}, devtools.Snapshot{"flights": map[string]any{"ids": []string{"f1"}}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := conn.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	waitFor(t, func() bool {
		sessions := server.Sessions()
		return len(sessions) == 1 && sessions[0].StoppedAt != nil
	})
	session := server.Sessions()[0]
	if session.Name != "flights" || session.Actions != 1 || session.LastAction != "[Flights] add" {
		t.Fatalf("unexpected session %+v", session)
	}
	if _, ok := session.State["flights"]; !ok {
		t.Fatalf("expected state to be kept, got %v", session.State)
	}

	resp, err := http.Get(httpServer.URL + "/sessions")
	if err != nil {
		t.Fatalf("get sessions: %v", err)
	}
	defer resp.Body.Close()
	var listed []Session
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].InstanceID != session.InstanceID {
		t.Fatalf("unexpected listing %+v", listed)
	}
}

func TestRelayIgnoresInvalidFrames(t *testing.T) {
	server := NewServer(zerolog.Nop())
	server.apply(remote.Message{Type: remote.MessageStart, InstanceID: "1", Name: "s"})
	server.apply(remote.Message{Type: remote.MessageAction, InstanceID: "1", Action: &devtools.Action{Type: "x"}})

	sessions := server.Sessions()
	if len(sessions) != 1 || sessions[0].Actions != 1 || sessions[0].StoppedAt != nil {
		t.Fatalf("unexpected sessions %+v", sessions)
	}

	rec := httptest.NewRecorder()
	server.Handler("/ws").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
