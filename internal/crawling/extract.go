package crawling

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a PDF link found on a listing page.
type Link struct {
	URL  string // canonical absolute URL
	Text string // anchor text, trimmed
}

// ExtractPDFLinks returns every link to a .pdf file in htmlContent, resolved against
// baseURL, canonicalised and deduplicated in document order.
func ExtractPDFLinks(htmlContent string, baseURL string) ([]Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	seen := make(map[string]bool)
	links := make([]Link, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			// Skip malformed URLs
			return
		}

		absoluteURL := base.ResolveReference(linkURL)
		if !strings.EqualFold(path.Ext(absoluteURL.Path), ".pdf") {
			return
		}

		canonical, err := CanonicalURL(absoluteURL.String())
		if err != nil || seen[canonical] {
			return
		}
		seen[canonical] = true

		links = append(links, Link{
			URL:  canonical,
			Text: strings.TrimSpace(s.Text()),
		})
	})

	return links, nil
}
