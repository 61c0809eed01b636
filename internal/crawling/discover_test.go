package crawling

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/exercise-tracker/internal/db"
	"github.com/jonathan/exercise-tracker/internal/fetch"
)

// memoryCatalog upserts by document URL like the exercises table does.
type memoryCatalog struct {
	mu      sync.Mutex
	entries map[string]db.ExerciseInput
	order   []string
	calls   int
	failOn  string
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{entries: make(map[string]db.ExerciseInput)}
}

func (c *memoryCatalog) UpsertExercises(_ context.Context, inputs []db.ExerciseInput) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	for _, in := range inputs {
		if in.DocumentURL == c.failOn {
			return 0, errors.New("unique violation")
		}
	}
	for _, in := range inputs {
		if _, ok := c.entries[in.DocumentURL]; !ok {
			c.order = append(c.order, in.DocumentURL)
		}
		c.entries[in.DocumentURL] = in
	}
	return len(inputs), nil
}

func listingServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDiscoverer_Run(t *testing.T) {
	server := listingServer(t, map[string]string{
		"/exercices-sup/analyse/": `<a href="series.pdf">series.pdf</a><a href="suites.pdf">suites.pdf</a>`,
		"/exercices-oraux/":       `<a href="oral-1.pdf">oral-1.pdf</a><a href="readme.html">readme</a>`,
	})
	pages := []ListingPage{
		{Label: "sup/analyse", URL: server.URL + "/exercices-sup/analyse/"},
		{Label: "oraux", URL: server.URL + "/exercices-oraux/"},
	}
	store := newMemoryCatalog()

	report, err := NewDiscoverer(fetch.NewClient(nil), store, zerolog.Nop()).Run(context.Background(), pages)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 3, report.Upserted)
	assert.Equal(t, 0, report.FailedPages)
	require.Len(t, store.entries, 3)

	series := store.entries[server.URL+"/exercices-sup/analyse/series.pdf"]
	assert.Equal(t, "Series", series.Title)
	assert.Equal(t, db.LevelSup, series.Level)
	assert.Equal(t, db.CategoryAnalysis, series.Category)
	assert.Equal(t, "Analyse", series.Chapter)
	assert.False(t, series.IsPremium)

	oral := store.entries[server.URL+"/exercices-oraux/oral-1.pdf"]
	assert.Equal(t, db.LevelOral, oral.Level)
	assert.Equal(t, OralChapter, oral.Chapter)
	assert.Equal(t, "Oral 1", oral.Title)
}

func TestDiscoverer_RerunCreatesNoDuplicates(t *testing.T) {
	server := listingServer(t, map[string]string{
		"/exercices-sup/analyse/": `<a href="series.pdf">a</a><a href="./series.pdf#p2">b</a>`,
	})
	pages := []ListingPage{{Label: "sup", URL: server.URL + "/exercices-sup/analyse/"}}
	store := newMemoryCatalog()
	d := NewDiscoverer(fetch.NewClient(nil), store, zerolog.Nop())

	_, err := d.Run(context.Background(), pages)
	require.NoError(t, err)
	_, err = d.Run(context.Background(), pages)
	require.NoError(t, err)

	assert.Len(t, store.entries, 1)
	assert.Equal(t, 2, store.calls)
}

func TestDiscoverer_FailedPageIsSkipped(t *testing.T) {
	server := listingServer(t, map[string]string{
		"/exercices-sup/probas/": `<a href="lois.pdf">lois.pdf</a>`,
	})
	pages := []ListingPage{
		{Label: "missing", URL: server.URL + "/exercices-spe/analyse/"},
		{Label: "probas", URL: server.URL + "/exercices-sup/probas/"},
	}
	var buf bytes.Buffer
	store := newMemoryCatalog()

	report, err := NewDiscoverer(fetch.NewClient(nil), store, zerolog.New(&buf)).WithConcurrency(1).Run(context.Background(), pages)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailedPages)
	assert.Equal(t, 1, report.Upserted)
	require.Len(t, report.Pages, 2)

	var crawlErr *CrawlError
	assert.ErrorAs(t, report.Pages[0].Err, &crawlErr)
	var fetchErr *fetch.Error
	assert.ErrorAs(t, report.Pages[0].Err, &fetchErr)
	assert.Contains(t, buf.String(), "missing: listing page skipped")
}

func TestDiscoverer_StoreFailureIsReported(t *testing.T) {
	server := listingServer(t, map[string]string{
		"/a/": `<a href="x.pdf">x</a>`,
		"/b/": `<a href="y.pdf">y</a>`,
	})
	store := newMemoryCatalog()
	store.failOn = server.URL + "/a/x.pdf"
	pages := []ListingPage{{Label: "a", URL: server.URL + "/a/"}, {Label: "b", URL: server.URL + "/b/"}}

	report, err := NewDiscoverer(fetch.NewClient(nil), store, zerolog.Nop()).Run(context.Background(), pages)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailedPages)
	assert.Equal(t, 1, report.Upserted)
	assert.Error(t, report.Pages[0].Err)
	assert.Contains(t, store.entries, server.URL+"/b/y.pdf")
}

func TestDiscoverer_EmptyPageLogged(t *testing.T) {
	server := listingServer(t, map[string]string{"/empty/": `<p>nothing here</p>`})
	var buf bytes.Buffer
	store := newMemoryCatalog()

	report, err := NewDiscoverer(fetch.NewClient(nil), store, zerolog.New(&buf)).
		Run(context.Background(), []ListingPage{{Label: "empty", URL: server.URL + "/empty/"}})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Found)
	assert.Equal(t, 0, store.calls)
	assert.Contains(t, buf.String(), "empty: no PDF found")
}

func TestDiscoverer_NoPages(t *testing.T) {
	_, err := NewDiscoverer(fetch.NewClient(nil), newMemoryCatalog(), zerolog.Nop()).Run(context.Background(), nil)
	require.Error(t, err)

	var crawlErr *CrawlError
	assert.ErrorAs(t, err, &crawlErr)
}

func TestEntriesFromPage(t *testing.T) {
	page := ListingPage{URL: "https://www.xif.fr/public/exercices-sp%C3%A9/alg%C3%A8bre/"}
	entries, err := EntriesFromPage(page, `<a href="reduction.pdf">reduction.pdf</a>`)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "https://www.xif.fr/public/exercices-sp%C3%A9/alg%C3%A8bre/reduction.pdf", entries[0].DocumentURL)
	assert.Equal(t, "Reduction", entries[0].Title)
	assert.Equal(t, db.LevelSpe, entries[0].Level)
	assert.Equal(t, db.CategoryAlgebra, entries[0].Category)
	assert.Equal(t, "Algèbre", entries[0].Chapter)
}
