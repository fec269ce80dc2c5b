package notification

import (
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send:   make(chan []byte, 10),
		UserID: "user1",
	}

	hub.register <- client

	data := []byte(`{"title":"hello test"}`)
	hub.Broadcast("user1", data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

// a client dropped for being slow is already closed; its later unregister
// must not close the channel again and kill the hub
func TestHubUnregisterAfterDroppedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// no buffer and no reader, so the first broadcast drops the client
	slow := &Client{
		Send:   make(chan []byte),
		UserID: "user1",
	}
	hub.register <- slow

	hub.Broadcast("user1", []byte("first"))
	hub.unregister <- slow

	fresh := &Client{
		Send:   make(chan []byte, 10),
		UserID: "user1",
	}
	hub.register <- fresh

	data := []byte("second")
	hub.Broadcast("user1", data)

	select {
	case got := <-fresh.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("hub stopped delivering after the dropped client unregistered")
	}
}

func TestHubBroadcastToOtherUserNotDelivered(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send:   make(chan []byte, 10),
		UserID: "user1",
	}
	hub.register <- client

	hub.Broadcast("user2", []byte("not for you"))

	select {
	case got := <-client.Send:
		t.Fatalf("unexpected delivery: %s", got)
	case <-time.After(100 * time.Millisecond):
	}

	hub.unregister <- client
}
