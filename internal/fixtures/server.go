// Package fixtures serves canned provider streams and metadata over the
// real wire protocol. It backs the serve command for local development and
// the integration tests.
package fixtures

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gotorrentstream/internal/models"
)

// Fixtures is the canned data served per provider.
type Fixtures struct {
	// Torrents streamed per provider; providers absent from the map close
	// with zero items
	Streams map[models.ProviderSource][]models.Torrent `json:"streams"`
	// Titles by "<type>/<tmdb_id>"
	Titles map[string]string `json:"titles"`
	// Download-state collection keyed by info hash
	Torrents models.Torrents `json:"torrents"`
	// Providers that answer with an immediate error status
	FailingProviders []models.ProviderSource `json:"failing_providers"`
}

// NewRouter builds a gin router serving the streaming endpoint and the REST
// lookups from the given fixtures. Requests without a bearer token are
// rejected.
func NewRouter(f Fixtures) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requireBearer())

	router.GET("/stream/:type/:id", func(c *gin.Context) {
		source := models.ProviderSource(c.Query("source"))

		for _, failing := range f.FailingProviders {
			if source == failing {
				c.String(http.StatusBadGateway, "provider unavailable")
				return
			}
		}

		c.Header("Content-Type", "text/event-stream")
		for _, torrent := range f.Streams[source] {
			payload, err := json.Marshal(torrent)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			c.Writer.Flush()
		}
		// empty frame signals imminent close
		fmt.Fprint(c.Writer, "data:\n\n")
		c.Writer.Flush()
	})

	router.GET("/api/movie/:id", serveTitle(f, "movie"))
	router.GET("/api/tv/:id", serveTitle(f, "tv"))

	router.GET("/api/torrents", func(c *gin.Context) {
		torrents := f.Torrents
		if torrents == nil {
			torrents = models.Torrents{}
		}
		c.JSON(http.StatusOK, torrents)
	})

	return router
}

func serveTitle(f Fixtures, mediaType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := f.Titles[mediaType+"/"+c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown content id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"title": title})
	}
}

func requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		c.Next()
	}
}
