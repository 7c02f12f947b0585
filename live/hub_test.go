package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(quietLogger())
	go h.Run(ctx)

	room := MatchRoom("42")
	a := NewClient(h, nil, room)
	other := NewClient(h, nil, MatchRoom("7"))
	h.Register <- a
	h.Register <- other
	waitFor(t, func() bool { return h.ClientCount(room) == 1 })

	h.BroadcastToRoom(room, MessageEventRecorded, map[string]any{"minute": 12})

	select {
	case raw := <-a.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != MessageEventRecorded || msg.RoomID != "match_42" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	select {
	case <-other.Send:
		t.Fatal("other room must not receive the message")
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(quietLogger())
	go h.Run(ctx)

	c := NewClient(h, nil, MatchRoom("1"))
	h.Register <- c
	h.Unregister <- c
	waitFor(t, func() bool { return h.ClientCount(MatchRoom("1")) == 0 })
	if _, ok := <-c.Send; ok {
		t.Fatal("send channel must be closed")
	}
	// повторная отписка и рассылка не паникуют
	h.Unregister <- c
	h.BroadcastToRoom(MatchRoom("1"), MessageEventRecorded, nil)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(quietLogger())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	c := NewClient(h, nil, MatchRoom("1"))
	h.Register <- c
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-c.Send; ok {
		t.Fatal("clients must be closed on stop")
	}
	if h.Join(NewClient(h, nil, MatchRoom("1"))) {
		t.Fatal("join after stop: expected = false, got = true")
	}
}

func TestPumpsOverWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(quietLogger())
	go h.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(h, conn, MatchRoom("9"))
		h.Register <- c
		go c.WritePump()
		go c.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return h.ClientCount(MatchRoom("9")) == 1 })

	h.BroadcastToRoom(MatchRoom("9"), MessageMatchScheduled, map[string]string{"venue": "North"})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MessageMatchScheduled {
		t.Fatalf("unexpected message %+v", msg)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return h.ClientCount(MatchRoom("9")) == 0 })
}
