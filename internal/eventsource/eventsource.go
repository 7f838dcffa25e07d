// Package eventsource binds a single streaming HTTP request to the frame
// decoder and presents the decoded sequence as lifecycle callbacks. The
// request is issued eagerly when the adapter is constructed; message order
// is guaranteed per adapter.
package eventsource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/internal/sse"
)

const readBufferSize = 4096

// Events holds the lifecycle callbacks for one adapter. Nil callbacks are
// skipped. All callbacks are invoked from a single goroutine, in order.
type Events struct {
	OnStart   func()
	OnMessage func(json.RawMessage)
	OnClose   func()
	OnError   func(*errors.StreamError)
}

// Adapter owns one streaming request. Construction starts the transfer;
// Unsubscribe detaches the callbacks and aborts the request. After
// Unsubscribe returns, no further callbacks are delivered.
type Adapter struct {
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	events Events
}

// New constructs an adapter and immediately issues the request on its own
// goroutine. The Authorization header is set from token when non-empty.
func New(ctx context.Context, client *http.Client, url, token string, events Events) *Adapter {
	ctx, cancel := context.WithCancel(ctx)
	a := &Adapter{cancel: cancel, events: events}
	go a.run(ctx, client, url, token)
	return a
}

// Unsubscribe detaches all listeners and aborts the underlying transfer.
// Safe to call more than once.
func (a *Adapter) Unsubscribe() {
	a.mu.Lock()
	a.closed = true
	a.events = Events{}
	a.mu.Unlock()
	a.cancel()
}

func (a *Adapter) run(ctx context.Context, client *http.Client, url, token string) {
	defer a.cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.dispatchError(errors.NewConnectionError("failed to build stream request", err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		a.dispatchError(errors.NewConnectionError("stream request failed", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.dispatchError(errors.NewBadStatusError(resp.StatusCode))
		return
	}

	a.dispatch(func(e Events) {
		if e.OnStart != nil {
			e.OnStart()
		}
	})

	decoder := sse.NewDecoder(func(payload json.RawMessage) error {
		a.dispatch(func(e Events) {
			if e.OnMessage != nil {
				e.OnMessage(payload)
			}
		})
		return nil
	})

	buf := make([]byte, readBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, decodeErr := decoder.Write(buf[:n]); decodeErr != nil {
				a.dispatchError(toStreamError(decodeErr))
				return
			}
		}
		if err == io.EOF {
			a.dispatch(func(e Events) {
				if e.OnClose != nil {
					e.OnClose()
				}
			})
			return
		}
		if err != nil {
			a.dispatchError(errors.NewConnectionError("stream read failed", err))
			return
		}
	}
}

// dispatch runs fn with the current callbacks unless the adapter has been
// unsubscribed. The closed check and the callback invocation share one
// critical section so an unsubscribe can never race a late delivery.
func (a *Adapter) dispatch(fn func(Events)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	fn(a.events)
}

func (a *Adapter) dispatchError(streamErr *errors.StreamError) {
	a.dispatch(func(e Events) {
		if e.OnError != nil {
			e.OnError(streamErr)
		}
	})
}

func toStreamError(err error) *errors.StreamError {
	if streamErr, ok := err.(*errors.StreamError); ok {
		return streamErr
	}
	return errors.NewDecodeError("frame decoding failed", err)
}
