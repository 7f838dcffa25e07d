// Package ranking projects merged torrent options into ranked category
// groups and computes the auto-selected best pick.
package ranking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/amaumene/gotorrentstream/internal/constants"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/pkg/magnet"
)

// Group is one displayable category with its items ordered by descending
// seeders.
type Group struct {
	Category    string
	DisplayName string
	Items       []models.Torrent
}

// Result is the full ranked projection of a merged item list.
type Result struct {
	Auto   *models.Torrent
	Groups []Group
}

// Rank groups items by category, orders the groups by the fixed category
// ranking and computes the auto selection. Input order is preserved inside
// each group before the seeder sort, so equal-seeder items keep arrival
// order.
func Rank(items []models.Torrent) Result {
	groups := groupByCategory(items)

	result := Result{Auto: autoSelect(groups)}

	ordered := make([]Group, 0, len(groups.order))
	for _, category := range groups.order {
		ordered = append(ordered, Group{
			Category:    category,
			DisplayName: displayName(category),
			Items:       sortBySeeders(groups.byCategory[category]),
		})
	}

	// Categories later in the ranking list sort first. Absent categories get
	// index -1 and therefore sort key +1, which lands them after every known
	// category; this mirrors the long-standing display order even though an
	// explicit sentinel would read better.
	sort.SliceStable(ordered, func(i, j int) bool {
		return -lo.IndexOf(constants.CategoryRanking, ordered[i].Category) <
			-lo.IndexOf(constants.CategoryRanking, ordered[j].Category)
	})

	result.Groups = ordered
	return result
}

type grouped struct {
	order      []string
	byCategory map[string][]models.Torrent
}

func groupByCategory(items []models.Torrent) grouped {
	g := grouped{byCategory: make(map[string][]models.Torrent)}
	for _, item := range items {
		if _, seen := g.byCategory[item.Category]; !seen {
			g.order = append(g.order, item.Category)
		}
		g.byCategory[item.Category] = append(g.byCategory[item.Category], item)
	}
	return g
}

// autoSelect picks the highest-seeder item from the preferred movie category,
// falling back to the preferred TV category. Ties keep the first-encountered
// item.
func autoSelect(groups grouped) *models.Torrent {
	pool := groups.byCategory[constants.PreferredMovieCategory]
	if pool == nil {
		pool = groups.byCategory[constants.PreferredTVCategory]
	}
	if len(pool) == 0 {
		return nil
	}

	best := lo.MaxBy(pool, func(a, b models.Torrent) bool {
		return a.Seeders > b.Seeders
	})
	return &best
}

func sortBySeeders(items []models.Torrent) []models.Torrent {
	sorted := make([]models.Torrent, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seeders > sorted[j].Seeders
	})
	return sorted
}

// displayName strips the redundant leading path segment from movie
// categories ("Movies/x264/1080" becomes "x264/1080"); TV categories pass
// through unchanged.
func displayName(category string) string {
	if strings.HasPrefix(category, "Mov") {
		parts := strings.Split(category, "/")
		return strings.Join(parts[1:], "/")
	}
	return category
}

// DownloadLinkFor builds the download-trigger link target for one torrent.
func DownloadLinkFor(torrent models.Torrent, query models.StreamQuery) models.DownloadLink {
	request := models.DownloadRequest{
		TmdbID: query.TmdbID,
		Magnet: torrent.Download,
	}
	if query.Season > 0 {
		request.Season = strconv.Itoa(query.Season)
	}
	if query.Episode > 0 {
		request.Episode = strconv.Itoa(query.Episode)
	}

	return models.DownloadLink{
		To:    "/download",
		State: models.DownloadState{Downloads: []models.DownloadRequest{request}},
	}
}

// Downloaded reports whether the torrent's info hash appears in the
// download-state collection.
func Downloaded(torrent models.Torrent, torrents models.Torrents) bool {
	hash, err := magnet.Hash(torrent.Download)
	if err != nil {
		return false
	}
	_, ok := torrents[hash]
	return ok
}
