package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gotorrentstream",
	Short: "Streamed torrent option search against a media-manager backend",
	Long: `gotorrentstream opens one streaming subscription per torrent provider,
merges their incrementally arriving options and prints a ranked, grouped
view with a single auto-selected best pick.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		InitializeLogger()
		InitializeConfig()
	},
}

func main() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
