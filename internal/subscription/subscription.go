// Package subscription folds one provider's event stream into accumulated
// state. A subscription stays idle until a bearer token is available, then
// opens an adapter scoped to its provider; changed inputs tear the adapter
// down and start a fresh generation with independent state.
package subscription

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/internal/eventsource"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/pkg/logger"
)

// State is the externally visible snapshot of one provider subscription.
type State struct {
	Items   []models.Torrent
	Loading bool
	Err     *errors.StreamError
}

// Subscription owns one adapter bound to one provider.
type Subscription struct {
	provider models.ProviderSource
	client   *http.Client
	notify   func()
	log      logger.Logger

	mu      sync.Mutex
	gen     uint64
	adapter *eventsource.Adapter
	state   State
}

// New creates an idle subscription. notify is invoked after every state
// change; it must not call back into the subscription while holding locks.
func New(provider models.ProviderSource, client *http.Client, notify func(), log logger.Logger) *Subscription {
	if notify == nil {
		notify = func() {}
	}
	return &Subscription{
		provider: provider,
		client:   client,
		notify:   notify,
		log:      log,
	}
}

// Provider returns the provider identity this subscription is scoped to.
func (s *Subscription) Provider() models.ProviderSource {
	return s.provider
}

// Start opens a fresh stream for streamURL scoped to this provider,
// discarding any previous adapter and accumulated items. An empty token
// keeps the subscription idle: no connection is opened until credentials
// are ready.
func (s *Subscription) Start(ctx context.Context, streamURL, token string) {
	s.mu.Lock()
	old := s.adapter
	s.adapter = nil
	s.gen++
	gen := s.gen

	if token == "" {
		s.state = State{}
		s.mu.Unlock()
		unsubscribe(old)
		s.notify()
		return
	}

	s.state = State{Loading: true}
	s.mu.Unlock()

	// Unsubscribe outside the lock: the adapter invokes callbacks that take
	// it, and the generation bump already invalidates stale deliveries.
	unsubscribe(old)

	url := streamURL + "&source=" + string(s.provider)
	s.log.Debugf("[subscription] opening stream - provider: %s, url: %s", s.provider, url)

	adapter := eventsource.New(ctx, s.client, url, token, eventsource.Events{
		OnMessage: func(payload json.RawMessage) { s.onMessage(gen, payload) },
		OnClose:   func() { s.onClose(gen) },
		OnError:   func(streamErr *errors.StreamError) { s.onError(gen, streamErr) },
	})

	s.mu.Lock()
	if s.gen != gen {
		// replaced or stopped while connecting
		s.mu.Unlock()
		adapter.Unsubscribe()
		return
	}
	s.adapter = adapter
	s.mu.Unlock()
	s.notify()
}

// Stop tears down the adapter and marks the subscription settled. Events
// from the torn-down adapter can no longer mutate state.
func (s *Subscription) Stop() {
	s.mu.Lock()
	old := s.adapter
	s.adapter = nil
	s.gen++
	s.state.Loading = false
	s.mu.Unlock()

	unsubscribe(old)
	s.notify()
}

func unsubscribe(adapter *eventsource.Adapter) {
	if adapter != nil {
		adapter.Unsubscribe()
	}
}

// Snapshot returns a copy of the current state.
func (s *Subscription) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.Torrent, len(s.state.Items))
	copy(items, s.state.Items)
	return State{Items: items, Loading: s.state.Loading, Err: s.state.Err}
}

func (s *Subscription) onMessage(gen uint64, payload json.RawMessage) {
	var torrent models.Torrent
	if err := json.Unmarshal(payload, &torrent); err != nil {
		s.onError(gen, errors.NewDecodeError("unexpected event payload shape", err))
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.state.Err != nil {
		s.mu.Unlock()
		return
	}
	s.state.Items = append(s.state.Items, torrent)
	s.mu.Unlock()
	s.notify()
}

func (s *Subscription) onClose(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state.Loading = false
	count := len(s.state.Items)
	s.mu.Unlock()

	s.log.Debugf("[subscription] stream closed - provider: %s, items: %d", s.provider, count)
	s.notify()
}

func (s *Subscription) onError(gen uint64, streamErr *errors.StreamError) {
	s.mu.Lock()
	if gen != s.gen || s.state.Err != nil {
		s.mu.Unlock()
		return
	}
	s.state.Loading = false
	s.state.Err = streamErr
	s.mu.Unlock()

	s.log.Warnf("[subscription] stream failed - provider: %s: %v", s.provider, streamErr)
	s.notify()
}
