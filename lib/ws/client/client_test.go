package wsclient

import (
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu        sync.Mutex
	inbound   chan []byte
	pings     int
	deadlines int
	pong      func(string) error
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 4)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbound
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadlines++
	return nil
}

func (f *fakeConn) SetPongHandler(h func(string) error) {
	f.pong = h
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType != websocket.PingMessage {
		return errors.New("unexpected control frame")
	}
	f.pings++
	return nil
}

func (f *fakeConn) counters() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings, f.deadlines
}

func TestDispatch(t *testing.T) {
	t.Run(`returns when the peer closes`, func(t *testing.T) {
		conn := newFakeConn()
		client := NewClient("user-1", conn, Settings{})
		conn.inbound <- []byte("hello")
		close(conn.inbound)

		done := make(chan struct{})
		go func() {
			client.Dispatch()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("dispatch did not return")
		}
		pings, deadlines := conn.counters()
		require.Equal(t, 0, pings)
		require.Equal(t, 0, deadlines)
	})

	t.Run(`pings while the session is open`, func(t *testing.T) {
		conn := newFakeConn()
		client := NewClient("user-1", conn, Settings{PingInterval: 10 * time.Millisecond})
		require.Equal(t, 20*time.Millisecond, client.settings.PongWait)

		done := make(chan struct{})
		go func() {
			client.Dispatch()
			close(done)
		}()
		require.Eventually(t, func() bool {
			pings, _ := conn.counters()
			return pings >= 2
		}, time.Second, 5*time.Millisecond)

		require.NotNil(t, conn.pong)
		_, before := conn.counters()
		require.NoError(t, conn.pong(""))
		_, after := conn.counters()
		require.Equal(t, before+1, after)

		close(conn.inbound)
		<-done
	})
}
