package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gotorrentstream/internal/cache"
	"github.com/amaumene/gotorrentstream/internal/errors"
	"github.com/amaumene/gotorrentstream/internal/fixtures"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixtureClient(t *testing.T, f fixtures.Fixtures) *Client {
	t.Helper()
	server := httptest.NewServer(fixtures.NewRouter(f))
	t.Cleanup(server.Close)
	return New(server.URL, server.Client(), nil, nil, logger.New())
}

func TestTitleLookup(t *testing.T) {
	client := fixtureClient(t, fixtures.Fixtures{
		Titles: map[string]string{
			"movie/603": "The Matrix",
			"tv/1396":   "Breaking Bad",
		},
	})

	title, err := client.Title(context.Background(), models.MediaMovie, "603", "tok")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", title)

	title, err = client.Title(context.Background(), models.MediaSeries, "1396", "tok")
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", title)
}

func TestTitleLookupUnknownID(t *testing.T) {
	client := fixtureClient(t, fixtures.Fixtures{})

	_, err := client.Title(context.Background(), models.MediaMovie, "999", "tok")
	require.Error(t, err)

	var streamErr *errors.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, errors.ErrorTypeAPIFailure, streamErr.Type)
}

func TestTorrentsLookup(t *testing.T) {
	client := fixtureClient(t, fixtures.Fixtures{
		Torrents: models.Torrents{
			"CAFEBABE": models.TorrentStatus{PercentDone: 0.5},
		},
	})

	torrents, err := client.Torrents(context.Background(), "tok")
	require.NoError(t, err)
	require.Contains(t, torrents, "CAFEBABE")
	assert.Equal(t, 0.5, torrents["CAFEBABE"].PercentDone)
}

func TestMissingTokenRejected(t *testing.T) {
	client := fixtureClient(t, fixtures.Fixtures{
		Titles: map[string]string{"movie/603": "The Matrix"},
	})

	_, err := client.Title(context.Background(), models.MediaMovie, "603", "")
	require.Error(t, err)
}

func TestGetUsesCache(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"cached"}`))
	}))
	defer server.Close()

	client := New(server.URL, server.Client(), cache.New(10, time.Minute), nil, logger.New())

	for i := 0; i < 3; i++ {
		title, err := client.Title(context.Background(), models.MediaMovie, "603", "tok")
		require.NoError(t, err)
		assert.Equal(t, "cached", title)
	}

	assert.Equal(t, int64(1), hits.Load())
}
