// Package aggregate fans one logical query out to every active provider and
// merges their subscription states into a single derived view. Providers are
// independent: a slow or failing provider never blocks or contaminates the
// others.
package aggregate

import (
	"context"
	"net/http"
	"sync"

	"github.com/amaumene/gotorrentstream/internal/auth"
	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/internal/subscription"
	"github.com/amaumene/gotorrentstream/pkg/logger"
)

// View is the merged projection over all provider subscriptions. Items are
// concatenated in provider-declaration order; within one provider, arrival
// order. It holds no state of its own and is recomputed per request.
type View struct {
	Items   []models.Torrent
	Loading []models.ProviderSource
	Errors  map[models.ProviderSource]*errors.StreamError
}

// Settled reports whether every provider has finished, successfully or not.
func (v View) Settled() bool {
	return len(v.Loading) == 0
}

// Aggregator manages one subscription per provider for a single query.
type Aggregator struct {
	baseURL string
	client  *http.Client
	tokens  auth.TokenProvider
	log     logger.Logger

	mu       sync.Mutex
	subs     []*subscription.Subscription
	onUpdate func(View)
	stopOnce sync.Once
}

// New creates an aggregator over the given provider set. Nothing is opened
// until Start.
func New(baseURL string, providers []models.ProviderSource, client *http.Client, tokens auth.TokenProvider, log logger.Logger) *Aggregator {
	a := &Aggregator{
		baseURL: baseURL,
		client:  client,
		tokens:  tokens,
		log:     log,
	}
	for _, provider := range providers {
		a.subs = append(a.subs, subscription.New(provider, client, a.notify, log))
	}
	return a
}

// OnUpdate registers the observer invoked after every underlying state
// change. Registration must happen before Start.
func (a *Aggregator) OnUpdate(fn func(View)) {
	a.mu.Lock()
	a.onUpdate = fn
	a.mu.Unlock()
}

// Start acquires a token and opens one stream per provider. A failed token
// acquisition leaves every subscription idle; this is a delayed start, not a
// per-provider error.
func (a *Aggregator) Start(ctx context.Context, query models.StreamQuery) error {
	token, err := a.tokens.GetToken(ctx)
	if err != nil {
		a.log.Warnf("[aggregate] token unavailable, subscriptions stay idle: %v", err)
		return errors.NewStreamError(errors.ErrorTypeAuthUnavailable, "token acquisition failed", err)
	}

	streamURL := a.baseURL + query.Path()
	for _, sub := range a.subs {
		sub.Start(ctx, streamURL, token)
	}
	return nil
}

// Stop tears down every subscription exactly once.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() {
		for _, sub := range a.subs {
			sub.Stop()
		}
	})
}

// View computes the merged projection from the current child states.
func (a *Aggregator) View() View {
	view := View{Errors: make(map[models.ProviderSource]*errors.StreamError)}

	for _, sub := range a.subs {
		state := sub.Snapshot()
		view.Items = append(view.Items, state.Items...)
		if state.Loading {
			view.Loading = append(view.Loading, sub.Provider())
		}
		if state.Err != nil {
			view.Errors[sub.Provider()] = state.Err
		}
	}

	return view
}

func (a *Aggregator) notify() {
	a.mu.Lock()
	fn := a.onUpdate
	a.mu.Unlock()

	if fn != nil {
		fn(a.View())
	}
}
