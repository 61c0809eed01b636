package main

import (
	"fmt"
	"os"

	"github.com/jonathan/exercise-tracker/internal/crawling"
	"github.com/jonathan/exercise-tracker/internal/db"
	"github.com/jonathan/exercise-tracker/internal/fetch"
	"github.com/jonathan/exercise-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scrape listing pages and add the PDFs they link to the catalogue",
	Long: "Fetches each listing page, collects its PDF links, classifies them by level and category " +
		"and upserts them into the catalogue keyed by document URL.",
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

var discoverEnsureSchema bool

func init() {
	discoverCmd.Flags().BoolVar(&discoverEnsureSchema, "ensure-schema", false, "Create the exercises table if it does not exist")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr, verbose)

	s, err := loadSettings(configPath, databaseURL)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, s.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer database.Close()

	if discoverEnsureSchema {
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	discoverer := crawling.NewDiscoverer(fetch.NewClient(s.fetchOptions()), database, logger).
		WithConcurrency(s.cfg.DiscoveryConcurrency)
	report, err := discoverer.Run(ctx, s.listingPages())
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintDiscoveryReport(report)
	if report.FailedPages == len(report.Pages) {
		return fmt.Errorf("all %d listing pages failed", report.FailedPages)
	}
	return nil
}
