package main

import (
	"fmt"
	"os"

	"github.com/jonathan/exercise-tracker/internal/catalog"
	"github.com/jonathan/exercise-tracker/internal/db"
	"github.com/jonathan/exercise-tracker/internal/fetch"
	"github.com/jonathan/exercise-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var countExercisesCmd = &cobra.Command{
	Use:   "count-exercises",
	Short: "Estimate the number of exercises in every catalogued sheet",
	Long: "Downloads every catalogued PDF, extracts its text, estimates how many exercises it contains " +
		"and stores the estimate only when it differs from the stored count.",
	Args: cobra.NoArgs,
	RunE: runCountExercises,
}

func init() {
	rootCmd.AddCommand(countExercisesCmd)
}

func runCountExercises(cmd *cobra.Command, _ []string) error {
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

	estimator := catalog.NewEstimator(database, fetch.NewClient(s.fetchOptions()), logger)
	summary, err := estimator.Run(ctx)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintEstimateSummary(summary)
	return nil
}
