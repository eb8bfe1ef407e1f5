package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

// mockClient creates a Client with an update queue but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:     hub,
		updates: make(chan []byte, updateBacklog),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	// Should not panic
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(nil)

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Broadcast(NewMessage("list", "updated", "list_abc", nil))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.updates:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "list_updated" {
				t.Errorf("expected type list_updated, got %s", got.Type)
			}
			if got.ID != "list_abc" {
				t.Errorf("expected id list_abc, got %s", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < updateBacklog; i++ {
		hub.Broadcast(NewMessage("list", "updated", "", nil))
	}
	// Dropped rather than blocking.
	hub.Broadcast(NewMessage("list", "deleted", "", nil))

	if got := len(c.updates); got != updateBacklog {
		t.Errorf("expected %d queued messages, got %d", updateBacklog, got)
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("list", "pending", "", map[string]any{"name": "Raid"})
	if msg.Type != "list_pending" || msg.Entity != "list" || msg.Action != "pending" {
		t.Errorf("unexpected message: %+v", msg)
	}

	data, _ := json.Marshal(NewMessage("list", "created", "", nil))
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("empty id should be omitted: %s", data)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("list", "updated", "", nil))
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandlerDeliversBroadcasts(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(NewMessage("list", "activated", "list_1", nil))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "list_activated" || got.ID != "list_1" {
		t.Errorf("unexpected message: %+v", got)
	}
}
