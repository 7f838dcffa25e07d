// Package models defines data structures for streamed torrent options and queries.
package models

import (
	"net/url"
	"strconv"
)

// ProviderSource identifies one external torrent provider.
type ProviderSource string

const (
	ProviderTorrentsCSV  ProviderSource = "torrentscsv"
	ProviderNyaaSi       ProviderSource = "nyaasi"
	ProviderPirateBay    ProviderSource = "piratebay"
	ProviderRarbg        ProviderSource = "rarbg"
	ProviderHorribleSubs ProviderSource = "horriblesubs"
	ProviderKickass      ProviderSource = "kickass"
)

// ActiveProviders returns the providers queried for every search, in the
// fixed order used when concatenating merged results.
func ActiveProviders() []ProviderSource {
	return []ProviderSource{
		ProviderTorrentsCSV,
		ProviderNyaaSi,
		ProviderPirateBay,
	}
}

// MediaType selects the streaming endpoint variant.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
)

// EpisodeInfo carries optional season/episode numbers attached to a torrent.
type EpisodeInfo struct {
	SeasonNumber  int `json:"season_number,omitempty"`
	EpisodeNumber int `json:"episode_number,omitempty"`
}

// Torrent is one option received from a provider stream. Immutable once
// received; identified for display purposes by its magnet URI.
type Torrent struct {
	Source      ProviderSource `json:"source"`
	Title       string         `json:"title"`
	Seeders     int            `json:"seeders"`
	Download    string         `json:"download"`
	Category    string         `json:"category"`
	EpisodeInfo *EpisodeInfo   `json:"episode_info,omitempty"`
}

// StreamQuery scopes one logical search: a piece of content plus optional
// season/episode. The provider is appended separately per subscription.
type StreamQuery struct {
	TmdbID  string
	Type    MediaType
	Season  int
	Episode int
}

// Path builds the streaming endpoint path for the query, without the source
// parameter. It always ends with the query separator so a source parameter
// can be appended directly.
func (q StreamQuery) Path() string {
	params := url.Values{}
	if q.Season > 0 {
		params.Set("season", strconv.Itoa(q.Season))
	}
	if q.Episode > 0 {
		params.Set("episode", strconv.Itoa(q.Episode))
	}
	return "/stream/" + string(q.Type) + "/" + url.PathEscape(q.TmdbID) + "?" + params.Encode()
}

// DownloadRequest is one entry handed to the download trigger route.
type DownloadRequest struct {
	TmdbID  string `json:"tmdb_id"`
	Magnet  string `json:"magnet"`
	Season  string `json:"season,omitempty"`
	Episode string `json:"episode,omitempty"`
}

// DownloadState is the navigation state for the download route.
type DownloadState struct {
	Downloads []DownloadRequest `json:"downloads"`
}

// DownloadLink is the link target produced for a selected torrent.
type DownloadLink struct {
	To    string        `json:"to"`
	State DownloadState `json:"state"`
}

// TorrentFile is one file inside an in-progress transfer.
type TorrentFile struct {
	Name           string `json:"name"`
	BytesCompleted int64  `json:"bytesCompleted"`
	Length         int64  `json:"length"`
}

// TorrentStatus is transfer progress for one torrent, keyed by info hash in
// the Torrents collection.
type TorrentStatus struct {
	Eta         int64         `json:"eta"`
	PercentDone float64       `json:"percentDone"`
	Files       []TorrentFile `json:"files"`
}

// Torrents maps info hashes to transfer progress, as returned by the REST
// download-state endpoint.
type Torrents map[string]TorrentStatus
