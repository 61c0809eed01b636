// Package observability provides formatted run summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/exercise-tracker/internal/catalog"
	"github.com/jonathan/exercise-tracker/internal/crawling"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes summary boxes to a writer, usually stdout
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintEstimateSummary outputs the totals of an exercise-count pass and the records that failed.
func (p *Printer) PrintEstimateSummary(summary *catalog.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records:    %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("Updated:    %d\n", summary.Updated))
	sb.WriteString(fmt.Sprintf("Unchanged:  %d\n", summary.Unchanged))
	sb.WriteString(fmt.Sprintf("Skipped:    %d\n", summary.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", summary.Duration.Round(time.Millisecond)))

	var failed []catalog.RecordResult
	for _, r := range summary.Results {
		if r.Outcome == catalog.OutcomeFailed {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", failed[i].Title, failed[i].Stage))
		}
		if len(failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
		}
	}

	p.printBox("EXERCISE COUNT SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiscoveryReport outputs per-page results of a discovery run.
func (p *Printer) PrintDiscoveryReport(report *crawling.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages:      %d (%d failed)\n", len(report.Pages), report.FailedPages))
	sb.WriteString(fmt.Sprintf("Found:      %d\n", report.Found))
	sb.WriteString(fmt.Sprintf("Stored:     %d\n", report.Upserted))

	if len(report.Pages) > 0 {
		sb.WriteString("\n")
	}
	for _, page := range report.Pages {
		label := page.Page.Label
		if label == "" {
			label = page.Page.URL
		}
		if page.Err != nil {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", label))
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", label, page.Upserted, page.Found))
	}

	p.printBox("CATALOGUE DISCOVERY", strings.TrimSuffix(sb.String(), "\n"))
}
