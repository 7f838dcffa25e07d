package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cehbz/torrentname"
	"github.com/spf13/cobra"

	"github.com/amaumene/gotorrentstream/internal/aggregate"
	"github.com/amaumene/gotorrentstream/internal/constants"
	"github.com/amaumene/gotorrentstream/internal/database"
	"github.com/amaumene/gotorrentstream/internal/models"
	"github.com/amaumene/gotorrentstream/internal/ranking"
	"github.com/amaumene/gotorrentstream/pkg/httputil"
	"github.com/amaumene/gotorrentstream/pkg/magnet"
)

var (
	searchSeason   int
	searchEpisode  int
	searchDownload bool
)

var searchCmd = &cobra.Command{
	Use:   "search <movie|series> <tmdb_id>",
	Short: "Stream torrent options from every provider and rank them",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchSeason, "season", 0, "season number (series only)")
	searchCmd.Flags().IntVar(&searchEpisode, "episode", 0, "episode number (series only)")
	searchCmd.Flags().BoolVar(&searchDownload, "download", false, "record the auto selection in the local download store")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mediaType := models.MediaType(args[0])
	if mediaType != models.MediaMovie && mediaType != models.MediaSeries {
		return fmt.Errorf("unknown media type %q, expected movie or series", args[0])
	}

	InitializeDatabase()
	defer DB.Close()
	InitializeServices()

	query := models.StreamQuery{
		TmdbID:  args[1],
		Type:    mediaType,
		Season:  searchSeason,
		Episode: searchEpisode,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.SettleTimeout)
	defer cancel()

	token, err := tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("token acquisition failed: %w", err)
	}

	if title, err := apiClient.Title(ctx, mediaType, query.TmdbID, token); err != nil {
		Logger.Warnf("[search] title lookup failed: %v", err)
	} else {
		fmt.Printf("Options for %s\n\n", title)
	}

	view, err := runAggregation(ctx, query)
	if err != nil {
		return err
	}

	torrents, err := apiClient.Torrents(ctx, token)
	if err != nil {
		Logger.Debugf("[search] download-state lookup failed: %v", err)
	}

	printView(view, query, torrents)

	if searchDownload {
		return recordAutoSelection(view, query)
	}
	return nil
}

// runAggregation starts one subscription per provider and blocks until every
// provider settles or the context expires. Partial results are still
// returned on timeout.
func runAggregation(ctx context.Context, query models.StreamQuery) (aggregate.View, error) {
	aggregator := aggregate.New(Config.BaseURL, Config.Providers, httputil.NewStreamingClient(), tokens, Logger)
	defer aggregator.Stop()

	settled := make(chan struct{}, 1)
	aggregator.OnUpdate(func(view aggregate.View) {
		if view.Settled() {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	})

	if err := aggregator.Start(ctx, query); err != nil {
		return aggregate.View{}, err
	}

	select {
	case <-settled:
	case <-ctx.Done():
		Logger.Warnf("[search] aggregation timed out, printing partial results")
	}

	return aggregator.View(), nil
}

func printView(view aggregate.View, query models.StreamQuery, torrents models.Torrents) {
	for provider, streamErr := range view.Errors {
		fmt.Printf("Error occured whilst loading options from %s: %v\n", provider, streamErr)
	}

	result := ranking.Rank(view.Items)

	if len(result.Groups) == 0 && len(view.Errors) == 0 {
		fmt.Println("No results")
		return
	}

	if result.Auto != nil {
		link := ranking.DownloadLinkFor(*result.Auto, query)
		fmt.Printf("Auto selection: %s (%d seeders) -> %s\n\n", result.Auto.Title, result.Auto.Seeders, link.To)
	} else {
		fmt.Printf("Auto selection: none\n\n")
	}

	for _, group := range result.Groups {
		fmt.Printf("%s\n", group.DisplayName)
		for _, torrent := range group.Items {
			marker := ""
			if ranking.Downloaded(torrent, torrents) {
				marker = " [downloaded]"
			}
			fmt.Printf("  %s %s (%d)%s%s\n",
				initial(torrent.Source), torrent.Title, torrent.Seeders, describeRelease(torrent.Title), marker)
		}
	}
}

// describeRelease annotates a line with parsed release details when the
// title parses cleanly.
func describeRelease(title string) string {
	parsed := torrentname.Parse(title)
	if parsed == nil || parsed.Resolution == "" {
		return ""
	}
	if parsed.Source != "" {
		return fmt.Sprintf(" [%s %s]", parsed.Resolution, parsed.Source)
	}
	return fmt.Sprintf(" [%s]", parsed.Resolution)
}

func initial(provider models.ProviderSource) string {
	name := string(provider)
	if name == "" {
		return "?"
	}
	return string(name[0])
}

func recordAutoSelection(view aggregate.View, query models.StreamQuery) error {
	result := ranking.Rank(view.Items)
	if result.Auto == nil {
		return fmt.Errorf("no auto selection to download")
	}

	hash, err := magnet.Hash(result.Auto.Download)
	if err != nil {
		return fmt.Errorf("auto selection has no extractable hash: %w", err)
	}

	err = DB.StoreDownload(&database.Download{
		Hash:    hash,
		Title:   result.Auto.Title,
		Magnet:  result.Auto.Download,
		AddedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	Logger.Infof("[search] recorded download %s (%s)", result.Auto.Title, hash)
	return nil
}
