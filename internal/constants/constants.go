// Package constants defines application-wide constants and default values.
package constants

import "time"

const (
	// Default configuration values
	DefaultLogLevel = "info"
	DefaultBaseURL  = "http://localhost:5000"

	// Cache settings
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 24 // hours

	// Rate limiting for the REST layer
	APIRateLimit = 20 // requests per second
	APIRateBurst = 5  // burst capacity
)

// Timeout constants for various operations
const (
	// Timeout for REST calls
	APITimeout = 30 * time.Second

	// Upper bound for a full aggregation to settle
	SettleTimeout = 60 * time.Second
)

// CategoryRanking lists known category strings, most preferred last.
// Categories absent from this list rank behind every listed one.
var CategoryRanking = []string{
	"Movies/XVID",
	"Movies/x264",
	"Movies/x264/720",
	"Movies/XVID/720",
	"Movies/BD Remux",
	"Movies/Full BD",
	"Movies/x264/1080",
	"Movies/x264/4k",
	"Movies/x265/4k",
	"Movies/x264/3D",
	"Movs/x265/4k/HDR",

	"TV Episodes",
	"TV HD Episodes",
	"TV UHD Episodes",
	"TV-UHD-episodes",
}

// Preferred categories for auto-selection
const (
	PreferredMovieCategory = "x264/1080"
	PreferredTVCategory    = "TV HD Episodes"
)
