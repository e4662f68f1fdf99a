package realtime

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionSendAndClose(t *testing.T) {
	sock := newFakeSocket()
	conn := NewConnection(sock)
	conn.Start()

	require.NoError(t, conn.Send([]byte(`{"type":"error","message":"x"}`)))
	select {
	case data := <-sock.writes:
		assert.JSONEq(t, `{"type":"error","message":"x"}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("frame was not written")
	}

	assert.False(t, conn.Closed())
	conn.Close(websocket.CloseNormalClosure, "done")
	assert.True(t, conn.Closed())

	// Idempotent, and sends are rejected afterwards.
	conn.Close(websocket.CloseNormalClosure, "done again")
	assert.Error(t, conn.Send([]byte("late")))
}

func TestConnectionFlushesQueuedFramesOnClose(t *testing.T) {
	sock := newFakeSocket()
	conn := NewConnection(sock)

	// Queue before the write loop runs, then close immediately: the frame
	// must still go out before the socket shuts.
	require.NoError(t, conn.Send([]byte("goodbye")))
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "bye")

	select {
	case data := <-sock.writes:
		assert.Equal(t, "goodbye", string(data))
	case <-time.After(time.Second):
		t.Fatal("queued frame was dropped on close")
	}
}

func TestConnectionSendBufferOverflowCloses(t *testing.T) {
	// No write loop: nothing drains the buffer.
	conn := NewConnection(newFakeSocket())

	var overflowed bool
	for i := 0; i < sendBufSize+1; i++ {
		if err := conn.Send([]byte("spam")); err != nil {
			overflowed = true
			break
		}
	}
	assert.True(t, overflowed)
	assert.True(t, conn.Closed())
}

func TestConnectionIDsAreUnique(t *testing.T) {
	a := NewConnection(newFakeSocket())
	b := NewConnection(newFakeSocket())
	assert.NotEqual(t, a.ID, b.ID)
}
