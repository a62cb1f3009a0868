package protocol

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		msgType Type
		payload any
	}{
		{"auth request", AuthRequest, map[string]string{"username": "alice", "password": "hunter2"}},
		{"empty body", Heartbeat, nil},
		{"nested payload", RoomCreated, map[string]any{"room_id": "r1", "players": []string{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.payload)
			require.NoError(t, err)

			encoded, err := msg.Encode()
			require.NoError(t, err)

			decoded, err := ReadMessage(bytes.NewReader(encoded))
			require.NoError(t, err)

			assert.Equal(t, tt.msgType, decoded.Type)
		})
	}
}

func TestEncodeLengthIncludesTypeField(t *testing.T) {
	msg, err := NewMessage(AuthRequest, map[string]string{"a": "b"})
	require.NoError(t, err)

	encoded, err := msg.Encode()
	require.NoError(t, err)

	length := uint32(encoded[0])<<24 | uint32(encoded[1])<<16 | uint32(encoded[2])<<8 | uint32(encoded[3])
	assert.Equal(t, uint32(len(encoded)-4), length)
	assert.Equal(t, length, uint32(len(msg.Body)+2))
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, err := ReadMessage(&buf)
	require.Error(t, err)
}

func TestConnWriteIsConcurrencySafe(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := NewConn(server)
	cc := NewConn(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_, err := cc.Read()
			assert.NoError(t, err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, _ := NewMessage(Heartbeat, nil)
			assert.NoError(t, sc.Write(msg))
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reads")
	}
}

func TestExpectedResponseKnownTags(t *testing.T) {
	tag, ok := ExpectedResponse(AuthRequest)
	require.True(t, ok)
	assert.Equal(t, AuthResponse, tag)

	_, ok = ExpectedResponse(Logout)
	assert.False(t, ok)
}
