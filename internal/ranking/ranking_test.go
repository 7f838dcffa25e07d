package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gotorrentstream/internal/models"
)

func item(title, category string, seeders int) models.Torrent {
	return models.Torrent{
		Source:   models.ProviderTorrentsCSV,
		Title:    title,
		Seeders:  seeders,
		Download: "magnet:?xt=urn:btih:" + title,
		Category: category,
	}
}

func categories(groups []Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Category)
	}
	return out
}

func TestRankAutoSelectsMaxSeedersInPreferredCategory(t *testing.T) {
	result := Rank([]models.Torrent{
		item("low", "x264/1080", 5),
		item("high", "x264/1080", 12),
		item("huge-elsewhere", "x264/720", 99),
	})

	require.NotNil(t, result.Auto)
	assert.Equal(t, "high", result.Auto.Title)
	assert.Equal(t, 12, result.Auto.Seeders)
}

func TestRankAutoSelectFallsBackToTVCategory(t *testing.T) {
	result := Rank([]models.Torrent{
		item("episode", "TV HD Episodes", 3),
		item("other", "TV Episodes", 50),
	})

	require.NotNil(t, result.Auto)
	assert.Equal(t, "episode", result.Auto.Title)
}

func TestRankAutoSelectNilWithoutPreferredCategories(t *testing.T) {
	result := Rank([]models.Torrent{
		item("misc", "Movies/XVID", 100),
	})

	assert.Nil(t, result.Auto)
}

func TestRankGroupOrderFollowsCategoryRanking(t *testing.T) {
	result := Rank([]models.Torrent{
		item("a", "Movies/XVID", 1),
		item("b", "TV HD Episodes", 1),
		item("c", "Movies/x264/1080", 1),
	})

	// later entries of the ranking list come first
	assert.Equal(t, []string{"TV HD Episodes", "Movies/x264/1080", "Movies/XVID"}, categories(result.Groups))
}

func TestRankUnrankedCategoriesSortLast(t *testing.T) {
	// "x264/1080" is not a ranking-list entry (the list carries the
	// "Movies/" prefixed form), so it sorts with the unknowns, after every
	// ranked category, keeping first-seen order among themselves.
	result := Rank([]models.Torrent{
		item("a", "x264/1080", 5),
		item("b", "UnknownCat", 7),
		item("c", "TV Episodes", 1),
	})

	assert.Equal(t, []string{"TV Episodes", "x264/1080", "UnknownCat"}, categories(result.Groups))
}

func TestRankItemsWithinGroupSortBySeedersDescending(t *testing.T) {
	result := Rank([]models.Torrent{
		item("mid", "TV Episodes", 10),
		item("top", "TV Episodes", 42),
		item("bottom", "TV Episodes", 1),
	})

	require.Len(t, result.Groups, 1)
	titles := make([]string, 0, 3)
	for _, it := range result.Groups[0].Items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"top", "mid", "bottom"}, titles)
}

func TestRankEqualSeedersKeepArrivalOrder(t *testing.T) {
	result := Rank([]models.Torrent{
		item("first", "TV Episodes", 7),
		item("second", "TV Episodes", 7),
	})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "first", result.Groups[0].Items[0].Title)
	assert.Equal(t, "second", result.Groups[0].Items[1].Title)
}

func TestDisplayNameStripsMovieSegment(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"Movies/x264/1080", "x264/1080"},
		{"Movs/x265/4k/HDR", "x265/4k/HDR"},
		{"Movies/XVID", "XVID"},
		{"TV HD Episodes", "TV HD Episodes"},
		{"UnknownCat", "UnknownCat"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, displayName(tt.category), "category %q", tt.category)
	}
}

func TestDownloadLinkForMovie(t *testing.T) {
	torrent := item("pick", "x264/1080", 9)
	link := DownloadLinkFor(torrent, models.StreamQuery{TmdbID: "603", Type: models.MediaMovie})

	assert.Equal(t, "/download", link.To)
	require.Len(t, link.State.Downloads, 1)
	request := link.State.Downloads[0]
	assert.Equal(t, "603", request.TmdbID)
	assert.Equal(t, torrent.Download, request.Magnet)
	assert.Empty(t, request.Season)
	assert.Empty(t, request.Episode)
}

func TestDownloadLinkForEpisode(t *testing.T) {
	torrent := item("pick", "TV HD Episodes", 9)
	link := DownloadLinkFor(torrent, models.StreamQuery{
		TmdbID:  "1396",
		Type:    models.MediaSeries,
		Season:  2,
		Episode: 13,
	})

	require.Len(t, link.State.Downloads, 1)
	request := link.State.Downloads[0]
	assert.Equal(t, "2", request.Season)
	assert.Equal(t, "13", request.Episode)
}

func TestDownloaded(t *testing.T) {
	torrents := models.Torrents{
		"CAFEBABE": models.TorrentStatus{PercentDone: 1},
	}

	known := models.Torrent{Download: "magnet:?xt=urn:btih:CAFEBABE"}
	unknown := models.Torrent{Download: "magnet:?xt=urn:btih:DEADBEEF"}
	broken := models.Torrent{Download: "not-a-magnet"}

	assert.True(t, Downloaded(known, torrents))
	assert.False(t, Downloaded(unknown, torrents))
	assert.False(t, Downloaded(broken, torrents))
}
