package hub

import (
	"sync"
	"testing"
	"time"
)

// newTestClient builds a bare client without a websocket connection; its
// pumps are never started, so the send buffer is the only delivery path.
func newTestClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func TestBroadcastDeliversToClients(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	c1 := newTestClient(1)
	c2 := newTestClient(1)
	h.register <- c1
	h.register <- c2

	if got := h.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}

	h.Broadcast([]byte("ping"))

	for i, c := range []*Client{c1, c2} {
		select {
		case event := <-c.send:
			if string(event) != "ping" {
				t.Errorf("client %d received %q, want %q", i, event, "ping")
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d never received the event", i)
		}
	}
}

// Slow-client removal mutates the client set while ClientCount reads it
// from other goroutines; run with -race this catches any unsynchronized
// access between the two.
func TestSlowClientsDropUnderConcurrentCounting(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	for i := 0; i < 64; i++ {
		// Zero-capacity send buffers with no reader: every client is
		// slow, so the first delivered event drops all of them.
		h.register <- newTestClient(0)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				h.ClientCount()
			}
		}
	}()

	deadline := time.After(5 * time.Second)
	for h.ClientCount() > 0 {
		h.Broadcast([]byte("x"))
		select {
		case <-deadline:
			t.Fatal("slow clients were never dropped")
		case <-time.After(time.Millisecond):
		}
	}

	close(done)
	wg.Wait()
}

func TestUnregisterClosesSend(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	c := newTestClient(1)
	h.register <- c
	h.unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("unregistered client received an event instead of a close")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
}

func TestIsRunning(t *testing.T) {
	h := New("test", nil)
	if h.IsRunning() {
		t.Error("hub reports running before Run")
	}

	go h.Run()
	// A completed registration proves the loop is live.
	h.register <- newTestClient(1)

	if !h.IsRunning() {
		t.Error("hub does not report running after Run started")
	}
}

func TestBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test", nil)
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("unencodable value should return an error")
	}
}
