package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-mirror/internal/log"
)

var errClosed = errors.New("closed")

// fakeConn records written data frames. ReadMessage blocks until Close.
type fakeConn struct {
	writes chan Message
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{writes: make(chan Message, 64), closed: make(chan struct{})}
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errClosed
}

func (f *fakeConn) WriteMessage(t int, data []byte) error {
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	switch t {
	case websocket.TextMessage:
		f.writes <- NewJSONMessage(data)
	case websocket.BinaryMessage:
		f.writes <- NewBinaryMessage(data)
	}
	return nil
}

func (f *fakeConn) next(t *testing.T) Message {
	t.Helper()
	select {
	case m := <-f.writes:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
		return Message{}
	}
}

func startHub(t *testing.T, opts ...Option) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", append([]Option{WithLogger(log.Discard())}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	waitFor(t, h.IsRunning)
	return h, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func connect(t *testing.T, h *Hub) (*fakeConn, chan struct{}) {
	t.Helper()
	conn := newFakeConn()
	c := NewClient(h, conn)
	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()
	return conn, done
}

func TestBroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)

	a, _ := connect(t, h)
	b, _ := connect(t, h)
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.BroadcastJSON(map[string]int{"seq": 1}); err != nil {
		t.Fatal(err)
	}
	h.BroadcastBinary([]byte{0xff, 0xd8})

	for _, conn := range []*fakeConn{a, b} {
		if m := conn.next(t); m.Type != JSONMessage || string(m.Data) != `{"seq":1}` {
			t.Errorf("first = %+v", m)
		}
		if m := conn.next(t); m.Type != BinaryMessage || len(m.Data) != 2 {
			t.Errorf("second = %+v", m)
		}
	}
}

func TestReplaySendsLatestToNewClient(t *testing.T) {
	h, _ := startHub(t, WithReplay())

	h.BroadcastJSON("old")
	h.BroadcastJSON("new")
	waitFor(t, func() bool { return len(h.broadcast) == 0 })

	conn, _ := connect(t, h)
	if m := conn.next(t); string(m.Data) != `"new"` {
		t.Errorf("replayed %q, want \"new\"", m.Data)
	}
}

func TestWithoutReplayNewClientStartsEmpty(t *testing.T) {
	h, _ := startHub(t)
	h.BroadcastJSON("old")
	waitFor(t, func() bool { return len(h.broadcast) == 0 })

	conn, _ := connect(t, h)
	waitFor(t, func() bool { return h.ClientCount() == 1 })
	select {
	case m := <-conn.writes:
		t.Errorf("unexpected message %q", m.Data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	var mu sync.Mutex
	total := 0
	h, _ := startHub(t, WithClientObserver(func(d int) {
		mu.Lock()
		total += d
		mu.Unlock()
	}))

	conn, done := connect(t, h)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	conn.Close()
	<-done
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	mu.Lock()
	defer mu.Unlock()
	if total != 0 {
		t.Errorf("observer total = %d, want 0", total)
	}
}

func TestStopClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	conn, done := connect(t, h)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	cancel()
	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("client connection not closed after hub stop")
	}
	<-done
	waitFor(t, func() bool { return !h.IsRunning() })

	// Late clients must not block on a stopped hub.
	late, lateDone := connect(t, h)
	late.Close()
	select {
	case <-lateDone:
	case <-time.After(2 * time.Second):
		t.Fatal("late client blocked")
	}
}
