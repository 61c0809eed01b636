// Package main provides the exotracker CLI, which keeps the exercise-sheet catalogue up to date.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonathan/exercise-tracker/internal/config"
	"github.com/jonathan/exercise-tracker/internal/crawling"
	"github.com/jonathan/exercise-tracker/internal/fetch"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "exotracker",
	Short:         "Exercise-sheet catalogue maintenance",
	Long:          "exotracker discovers exercise-sheet PDFs from listing pages and estimates how many exercises each catalogued sheet contains.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	databaseURL string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (overrides DATABASE_URL / SUPABASE_DB_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a console logger writing to w, at debug level when debug is set.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// settings is the resolved configuration shared by every subcommand.
type settings struct {
	cfg         config.Config
	databaseURL string
}

// loadSettings merges the optional config file with defaults and resolves the database URL.
func loadSettings(path, dbFlag string) (*settings, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	defaults := config.Defaults()
	defaults.UserAgent = fetch.DefaultUserAgent
	merged := cfg.MergeWithDefaults(defaults)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	dbURL, err := config.ResolveDatabaseURL(dbFlag, merged.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &settings{cfg: merged, databaseURL: dbURL}, nil
}

// fetchOptions converts the configuration into fetch options.
func (s *settings) fetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:   s.cfg.Timeout(),
		UserAgent: s.cfg.UserAgent,
		MaxBytes:  s.cfg.MaxDocumentBytes(),
	}
}

// listingPages returns the configured listing pages, or the built-in ones.
func (s *settings) listingPages() []crawling.ListingPage {
	if len(s.cfg.ListingPages) == 0 {
		return crawling.DefaultListingPages()
	}
	pages := make([]crawling.ListingPage, 0, len(s.cfg.ListingPages))
	for _, p := range s.cfg.ListingPages {
		pages = append(pages, crawling.ListingPage{Label: p.Label, URL: p.URL})
	}
	return pages
}
