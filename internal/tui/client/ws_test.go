package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want interface{}
	}{
		{"snapshot", `{"type":"snapshot","seq":1,"payload":{"status":{"attached":true},"events":[]}}`, WSSnapshotMsg{}},
		{"status", `{"type":"status","seq":2,"payload":{"status":{"health":"degraded"}}}`, WSStatusMsg{}},
		{"event", `{"type":"event","seq":3,"payload":{"event":{"type":"split","zone":"hydrocity_1"}}}`, WSEventMsg{}},
		{"error", `{"type":"error","seq":4,"payload":{"message":"memory reads failing"}}`, WSErrorMsg{}},
		{"unknown", `{"type":"bogus","seq":5,"payload":{}}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg WSMessage
			if err := json.Unmarshal([]byte(tt.raw), &msg); err != nil {
				t.Fatal(err)
			}
			got := dispatch(msg)
			switch want := tt.want.(type) {
			case nil:
				if got != nil {
					t.Errorf("dispatch = %T, want nil", got)
				}
			case WSSnapshotMsg:
				if m, ok := got.(WSSnapshotMsg); !ok || m.Payload.Status == nil || !m.Payload.Status.Attached {
					t.Errorf("dispatch = %#v, want %T", got, want)
				}
			case WSStatusMsg:
				if m, ok := got.(WSStatusMsg); !ok || m.Payload.Status.Health != HealthDegraded {
					t.Errorf("dispatch = %#v, want %T", got, want)
				}
			case WSEventMsg:
				if m, ok := got.(WSEventMsg); !ok || m.Payload.Event.Zone != "hydrocity_1" {
					t.Errorf("dispatch = %#v, want %T", got, want)
				}
			case WSErrorMsg:
				if m, ok := got.(WSErrorMsg); !ok || m.Payload.Message != "memory reads failing" {
					t.Errorf("dispatch = %#v, want %T", got, want)
				}
			}
		})
	}
}

func TestDialURLAddsToken(t *testing.T) {
	c := NewWSClient("ws://127.0.0.1:8080/ws", "s3cret")
	if got := c.dialURL(); got != "ws://127.0.0.1:8080/ws?token=s3cret" {
		t.Errorf("dialURL = %q", got)
	}
	if got := NewWSClient("ws://127.0.0.1:8080/ws", "").dialURL(); got != "ws://127.0.0.1:8080/ws" {
		t.Errorf("dialURL without token = %q", got)
	}
}

func TestListenAndReadLoop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotToken := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"event","seq":7,"payload":{"event":{"type":"start","zone":"angel_island_1"}}}`))
		conn.ReadMessage()
	}))
	defer srv.Close()

	c := NewWSClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "tok")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, ok := c.Listen(ctx)().(WSConnectedMsg); !ok {
		t.Fatal("Listen did not connect")
	}
	if tok := <-gotToken; tok != "tok" {
		t.Errorf("token = %q", tok)
	}

	msg, ok := c.ReadLoop(ctx)().(WSEventMsg)
	if !ok {
		t.Fatalf("ReadLoop = %#v, want event", msg)
	}
	if msg.Payload.Event.Type != "start" || c.Seq() != 7 {
		t.Errorf("event = %+v, seq = %d", msg.Payload.Event, c.Seq())
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, ok := c.ReadLoop(ctx)().(WSDisconnectedMsg); !ok {
		t.Error("ReadLoop after Close should report a disconnect")
	}
}
