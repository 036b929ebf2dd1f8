package hub

import (
	"sync"
	"testing"
	"time"
)

// registerTestClient attaches a bare client with the given send buffer
// directly to a running hub. The read/write pumps need a live
// websocket, but the fan-out path only touches the send channel.
func registerTestClient(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c
	return c
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test")
	go h.Run()

	slow := registerTestClient(h, 1)
	healthy := registerTestClient(h, 64)
	waitForCount(t, h, 2)

	// First message fills the slow client's buffer; the second must
	// evict it without touching the healthy one.
	h.BroadcastBinary([]byte{1})
	h.BroadcastBinary([]byte{2})
	waitForCount(t, h, 1)

	select {
	case _, ok := <-slow.send:
		if !ok {
			t.Error("slow client's first message lost before eviction")
		}
	default:
		t.Error("slow client's buffered message missing")
	}

	if got := len(healthy.send); got != 2 {
		t.Errorf("healthy client received %d messages, want 2", got)
	}
}

func TestHub_ClientCountDuringEviction(t *testing.T) {
	h := New("test")
	go h.Run()

	// Zero-buffer clients make every broadcast an eviction, keeping
	// Run writing to the client map while ClientCount reads it.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			registerTestClient(h, 0)
			h.BroadcastBinary([]byte{byte(i)})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			h.ClientCount()
		}
	}()

	wg.Wait()
	waitForCount(t, h, 0)
}
