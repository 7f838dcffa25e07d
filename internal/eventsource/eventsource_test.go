package eventsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/pkg/httputil"
)

type recorder struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	messages []string
	err      *errors.StreamError
}

func (r *recorder) events() Events {
	return Events{
		OnStart: func() {
			r.mu.Lock()
			r.started = true
			r.mu.Unlock()
		},
		OnMessage: func(payload json.RawMessage) {
			r.mu.Lock()
			r.messages = append(r.messages, string(payload))
			r.mu.Unlock()
		},
		OnClose: func() {
			r.mu.Lock()
			r.closed = true
			r.mu.Unlock()
		},
		OnError: func(streamErr *errors.StreamError) {
			r.mu.Lock()
			r.err = streamErr
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{
		started:  r.started,
		closed:   r.closed,
		messages: append([]string(nil), r.messages...),
		err:      r.err,
	}
}

func TestAdapterDeliversMessagesInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(w, "data: %d\n\n", i)
		}
		fmt.Fprint(w, "data:\n\n")
	}))
	defer server.Close()

	rec := &recorder{}
	adapter := New(context.Background(), httputil.NewStreamingClient(), server.URL, "token-1", rec.events())
	defer adapter.Unsubscribe()

	require.Eventually(t, func() bool { return rec.snapshot().closed }, time.Second, 5*time.Millisecond)

	snap := rec.snapshot()
	assert.True(t, snap.started)
	assert.Equal(t, []string{"1", "2", "3"}, snap.messages)
	assert.Nil(t, snap.err)
}

func TestAdapterBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	rec := &recorder{}
	adapter := New(context.Background(), httputil.NewStreamingClient(), server.URL, "t", rec.events())
	defer adapter.Unsubscribe()

	require.Eventually(t, func() bool { return rec.snapshot().err != nil }, time.Second, 5*time.Millisecond)

	snap := rec.snapshot()
	assert.Equal(t, errors.ErrorTypeBadStatus, snap.err.Type)
	assert.False(t, snap.started)
	assert.Empty(t, snap.messages)
}

func TestAdapterConnectionFailure(t *testing.T) {
	rec := &recorder{}
	adapter := New(context.Background(), httputil.NewStreamingClient(), "http://127.0.0.1:1", "t", rec.events())
	defer adapter.Unsubscribe()

	require.Eventually(t, func() bool { return rec.snapshot().err != nil }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, errors.ErrorTypeConnectionFailed, rec.snapshot().err.Type)
}

func TestAdapterDecodeErrorSurfacesOnErrorChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {broken\n\n")
	}))
	defer server.Close()

	rec := &recorder{}
	adapter := New(context.Background(), httputil.NewStreamingClient(), server.URL, "t", rec.events())
	defer adapter.Unsubscribe()

	require.Eventually(t, func() bool { return rec.snapshot().err != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, errors.ErrorTypeDecodeFailed, rec.snapshot().err.Type)
}

func TestAdapterUnsubscribeStopsDelivery(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: 1\n\n")
		flusher.Flush()
		<-release
		fmt.Fprint(w, "data: 2\n\n")
		flusher.Flush()
	}))
	defer server.Close()
	defer close(release)

	rec := &recorder{}
	adapter := New(context.Background(), httputil.NewStreamingClient(), server.URL, "t", rec.events())

	require.Eventually(t, func() bool { return len(rec.snapshot().messages) == 1 }, time.Second, 5*time.Millisecond)

	adapter.Unsubscribe()
	release <- struct{}{}

	time.Sleep(50 * time.Millisecond)
	snap := rec.snapshot()
	assert.Equal(t, []string{"1"}, snap.messages)
	assert.False(t, snap.closed)
	assert.Nil(t, snap.err)
}
