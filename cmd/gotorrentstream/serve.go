package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amaumene/gotorrentstream/internal/fixtures"
)

var (
	servePort     string
	serveFixtures string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve canned provider streams for local development",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "5000", "listen port")
	serveCmd.Flags().StringVar(&serveFixtures, "fixtures", "", "path to a fixtures JSON file")
}

func runServe(cmd *cobra.Command, args []string) error {
	var data fixtures.Fixtures
	if serveFixtures != "" {
		raw, err := os.ReadFile(serveFixtures)
		if err != nil {
			return fmt.Errorf("failed to read fixtures: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to parse fixtures: %w", err)
		}
	}

	router := fixtures.NewRouter(data)

	Logger.Infof("[serve] fixture server listening on port %s", servePort)
	return http.ListenAndServe(":"+servePort, router)
}
