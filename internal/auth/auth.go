// Package auth abstracts bearer-token acquisition. Token refresh and the
// interactive re-login flow live behind the TokenProvider interface; this
// package only caches the result process-wide.
package auth

import (
	"context"
	"sync"
)

// TokenProvider yields a bearer token for the streaming and REST endpoints.
// Implementations may be slow or fail while re-authentication is pending.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider backed by a fixed credential.
type StaticToken string

func (t StaticToken) GetToken(ctx context.Context) (string, error) {
	return string(t), nil
}

// Cached wraps a TokenProvider and reuses the first successful token for
// every caller. Failures are not cached.
type Cached struct {
	inner TokenProvider

	mu    sync.Mutex
	token string
}

func NewCached(inner TokenProvider) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	token, err := c.inner.GetToken(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}
