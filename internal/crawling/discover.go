package crawling

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/exercise-tracker/internal/db"
)

// DefaultConcurrency is the number of listing pages fetched at once.
const DefaultConcurrency = 4

// ListingPage is a directory page whose PDF links are exercise sheets.
type ListingPage struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DefaultListingPages returns the listing pages of the xif.fr exercise archive.
func DefaultListingPages() []ListingPage {
	const root = "https://www.xif.fr/public/pr%C3%A9pas-dupuy-de-l%C3%B4me-maths/"
	return []ListingPage{
		{Label: "exercices-spé/algèbre", URL: root + "exercices-sp%C3%A9/alg%C3%A8bre/"},
		{Label: "exercices-spé/analyse", URL: root + "exercices-sp%C3%A9/analyse/"},
		{Label: "exercices-spé/probabilités", URL: root + "exercices-sp%C3%A9/probabilit%C3%A9s/"},
		{Label: "exercices-sup/algèbre", URL: root + "exercices-sup/alg%C3%A8bre/"},
		{Label: "exercices-sup/analyse", URL: root + "exercices-sup/analyse/"},
		{Label: "exercices-sup/proba", URL: root + "exercices-sup/probas/"},
		{Label: "exercices-oraux", URL: root + "exercices-oraux/"},
	}
}

// PageFetcher downloads a listing page.
type PageFetcher interface {
	HTML(ctx context.Context, url string) (string, error)
}

// Store receives discovered entries. Upserts are keyed by document URL.
type Store interface {
	UpsertExercises(ctx context.Context, inputs []db.ExerciseInput) (int, error)
}

// PageReport is the outcome for one listing page.
type PageReport struct {
	Page     ListingPage
	Found    int
	Upserted int
	Err      error
}

// Report aggregates a discovery run.
type Report struct {
	Pages       []PageReport
	Found       int
	Upserted    int
	FailedPages int
}

// Discoverer scrapes listing pages and upserts the PDFs they link to.
type Discoverer struct {
	fetcher     PageFetcher
	store       Store
	logger      zerolog.Logger
	concurrency int
}

// NewDiscoverer creates a Discoverer with DefaultConcurrency.
func NewDiscoverer(fetcher PageFetcher, store Store, logger zerolog.Logger) *Discoverer {
	return &Discoverer{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency sets how many listing pages are fetched at once.
func (d *Discoverer) WithConcurrency(n int) *Discoverer {
	if n > 0 {
		d.concurrency = n
	}
	return d
}

// EntriesFromPage builds catalogue entries for every PDF linked from a listing page.
func EntriesFromPage(page ListingPage, html string) ([]db.ExerciseInput, error) {
	links, err := ExtractPDFLinks(html, page.URL)
	if err != nil {
		return nil, err
	}

	class := Classify(page.URL)
	entries := make([]db.ExerciseInput, 0, len(links))
	for _, link := range links {
		entries = append(entries, db.ExerciseInput{
			Title:       CleanTitle(link.Text, link.URL),
			Chapter:     class.Chapter,
			Level:       class.Level,
			Category:    class.Category,
			DocumentURL: link.URL,
			IsPremium:   false,
		})
	}
	return entries, nil
}

// Run fetches every page concurrently, then upserts page by page in the given order.
// A page that fails to fetch, parse or store is reported and skipped.
func (d *Discoverer) Run(ctx context.Context, pages []ListingPage) (*Report, error) {
	if len(pages) == 0 {
		return nil, &CrawlError{Message: "no listing pages provided"}
	}

	type scraped struct {
		entries []db.ExerciseInput
		err     error
	}
	results := make([]scraped, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, page := range pages {
		g.Go(func() error {
			d.logger.Debug().Str("url", page.URL).Msg("fetching listing page")
			html, err := d.fetcher.HTML(gctx, page.URL)
			if err != nil {
				results[i].err = &CrawlError{Message: "failed to fetch listing page", Cause: err}
				return nil
			}
			results[i].entries, results[i].err = EntriesFromPage(page, html)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Pages: make([]PageReport, 0, len(pages))}
	for i, page := range pages {
		pr := PageReport{Page: page, Err: results[i].err, Found: len(results[i].entries)}
		report.Found += pr.Found

		switch {
		case pr.Err != nil:
			d.logger.Warn().Err(pr.Err).Str("page", page.Label).Msgf("%s: listing page skipped", page.Label)
		case pr.Found == 0:
			d.logger.Info().Str("page", page.Label).Msgf("%s: no PDF found", page.Label)
		default:
			n, err := d.store.UpsertExercises(ctx, results[i].entries)
			if err != nil {
				pr.Err = fmt.Errorf("failed to store %d entries: %w", pr.Found, err)
				d.logger.Warn().Err(err).Str("page", page.Label).Msgf("%s: storing %d entries failed", page.Label, pr.Found)
				break
			}
			pr.Upserted = n
			report.Upserted += n
			d.logger.Info().Str("page", page.Label).Int("found", pr.Found).Msgf("%s: %d documents stored", page.Label, n)
		}

		if pr.Err != nil {
			report.FailedPages++
		}
		report.Pages = append(report.Pages, pr)
	}

	return report, nil
}
