package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (c *fakeClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.messages = append(c.messages, message)
	return true
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

type stalledClient struct {
	entered chan struct{}
	release chan struct{}
}

func (c *stalledClient) Send([]byte) bool {
	close(c.entered)
	<-c.release
	return true
}

func (c *stalledClient) Close() {}

func TestHub_SlowClientDoesNotBlockRegistration(t *testing.T) {
	h := NewHub()
	slow := &stalledClient{entered: make(chan struct{}), release: make(chan struct{})}
	h.Register("v1", slow)

	done := make(chan int)
	go func() { done <- h.Broadcast("v1", []byte("hi")) }()
	<-slow.entered

	registered := make(chan struct{})
	go func() {
		other := &fakeClient{}
		h.Register("v1", other)
		h.Unregister("v1", other)
		close(registered)
	}()
	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked behind a stalled Send")
	}

	close(slow.release)
	require.Equal(t, 1, <-done)
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	h := NewHub()
	a, b, other := &fakeClient{}, &fakeClient{fail: true}, &fakeClient{}
	h.Register("v1", a)
	h.Register("v1", b)
	h.Register("v2", other)
	require.Equal(t, 2, h.Clients("v1"))

	require.Equal(t, 1, h.Broadcast("v1", []byte("hi")))
	require.Equal(t, [][]byte{[]byte("hi")}, a.messages)
	require.Empty(t, other.messages)

	h.Unregister("v1", a)
	h.Unregister("v1", b)
	require.Equal(t, 0, h.Clients("v1"))
	h.Unregister("missing", a)
}

func TestView_SetStateMergesAndBroadcasts(t *testing.T) {
	h := NewHub()
	c := &fakeClient{}
	h.Register("dash", c)
	v := NewView("dash", h)

	v.SetState(map[string]any{"b": "aaa"})
	v.SetState(map[string]any{"c": 1.5})
	require.Equal(t, map[string]any{"b": "aaa", "c": 1.5}, v.State())

	require.Len(t, c.messages, 2)
	var msg Message
	require.NoError(t, json.Unmarshal(c.messages[0], &msg))
	require.Equal(t, Message{Type: "state", View: "dash", Patch: map[string]any{"b": "aaa"}}, msg)
}

func TestView_StateIsACopy(t *testing.T) {
	v := NewView("x", nil)
	v.SetState(map[string]any{"a": 1})
	s := v.State()
	s["a"] = 2
	require.Equal(t, 1, v.State()["a"])
}

func TestView_Snapshot(t *testing.T) {
	v := NewView("x", nil)
	v.SetState(map[string]any{"a": "b"})
	data, err := v.Snapshot()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"snapshot","view":"x","state":{"a":"b"}}`, string(data))
}

func TestViews_GetCreatesOnce(t *testing.T) {
	vs := NewViews(NewHub())
	_, ok := vs.Lookup("a")
	require.False(t, ok)

	first := vs.Get("a")
	require.Same(t, first, vs.Get("a"))
	got, ok := vs.Lookup("a")
	require.True(t, ok)
	require.Same(t, first, got)
	require.Equal(t, "a", first.ID())
}
