// Package api implements the non-streaming REST reads: content metadata
// lookups and the download-state collection. Responses are cached in the
// LRU cache and calls are rate limited.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amaumene/gotorrentstream/internal/cache"
	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/pkg/logger"
	"github.com/amaumene/gotorrentstream/pkg/ratelimiter"
)

// Client is a thin caller for GET <base>/api/{path}?params endpoints.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	cache       *cache.LRUCache
	rateLimiter *ratelimiter.TokenBucket
	logger      logger.Logger
}

// New creates an API client. cache may be nil to disable caching.
func New(baseURL string, httpClient *http.Client, lru *cache.LRUCache, limiter *ratelimiter.TokenBucket, log logger.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		cache:       lru,
		rateLimiter: limiter,
		logger:      log,
	}
}

// Get performs GET <base>/api/<path>?<params> with a bearer token and
// decodes the JSON response into out. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, path string, params url.Values, token string, out interface{}) error {
	requestURL := c.baseURL + "/api/" + path
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	if c.cache != nil {
		if cached, found := c.cache.Get(requestURL); found {
			c.logger.Debugf("[api] cache hit for %s", requestURL)
			return json.Unmarshal(cached.([]byte), out)
		}
	}

	if c.rateLimiter != nil {
		c.rateLimiter.Wait()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.NewAPIError("failed to build request", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError(fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewAPIError(fmt.Sprintf("request to %s returned status %d", path, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAPIError("failed to read response body", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewAPIError("failed to decode response", err)
	}

	if c.cache != nil {
		c.cache.Set(requestURL, body)
	}
	return nil
}

type titleResponse struct {
	Title string `json:"title"`
}

// Title looks up the display title for a piece of content. Series titles
// come from the tv endpoint, movies from the movie endpoint.
func (c *Client) Title(ctx context.Context, mediaType models.MediaType, tmdbID, token string) (string, error) {
	endpoint := "movie/" + tmdbID
	if mediaType == models.MediaSeries {
		endpoint = "tv/" + tmdbID
	}

	var meta titleResponse
	if err := c.Get(ctx, endpoint, nil, token, &meta); err != nil {
		return "", err
	}
	return meta.Title, nil
}

// Torrents fetches the download-state collection keyed by info hash.
func (c *Client) Torrents(ctx context.Context, token string) (models.Torrents, error) {
	var torrents models.Torrents
	if err := c.Get(ctx, "torrents", nil, token, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}
