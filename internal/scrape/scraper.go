// Package scrape fetches a link's page and extracts display metadata
// (title, description, logo) from its HTML.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent identifies linkward to the sites it refreshes.
const DefaultUserAgent = "linkward/1.0 (+https://github.com/jonesrussell/linkward)"

// Scraper fetches page metadata for a URL.
type Scraper struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// PageMetadata holds metadata extracted from a page.
type PageMetadata struct {
	Title       string
	Description string
	Logo        string
}

// NewScraper creates a Scraper whose fetches are bounded by timeout.
func NewScraper(client *http.Client, timeout time.Duration) *Scraper {
	if client == nil {
		client = &http.Client{}
	}

	return &Scraper{
		client:    client,
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}
}

// FetchPage fetches the page at pageURL and extracts its metadata.
// Failures are returned as *Error with a classified Kind.
func (s *Scraper) FetchPage(ctx context.Context, pageURL string) (*PageMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindOther, URL: pageURL, Cause: err}
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, doErr := s.client.Do(req)
	if doErr != nil {
		return nil, classifyTransportError(doErr, pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, pageURL)
	}

	doc, parseErr := goquery.NewDocumentFromReader(resp.Body)
	if parseErr != nil {
		return nil, &Error{Kind: KindOther, URL: pageURL, Cause: fmt.Errorf("parse html: %w", parseErr)}
	}

	return extractMetadata(doc, pageURL), nil
}

// classifyTransportError maps transport-level failures to an Error kind.
func classifyTransportError(cause error, pageURL string) *Error {
	var netErr net.Error
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: pageURL, Cause: cause}
	}

	if errors.Is(cause, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: pageURL, Cause: cause}
	}

	return &Error{Kind: KindOther, URL: pageURL, Cause: cause}
}

// extractMetadata pulls title, description, and logo out of the parsed
// document. Open Graph values win over plain tags since sites curate
// them for link previews.
func extractMetadata(doc *goquery.Document, pageURL string) *PageMetadata {
	meta := &PageMetadata{}

	meta.Title = metaContent(doc, `meta[property="og:title"]`)
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	meta.Description = metaContent(doc, `meta[property="og:description"]`)
	if meta.Description == "" {
		meta.Description = metaContent(doc, `meta[name="description"]`)
	}

	meta.Logo = extractLogo(doc, pageURL)

	return meta
}

// metaContent returns the trimmed content attribute of the first
// element matching the selector.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// logoSelectors is checked in preference order.
var logoSelectors = []string{
	`meta[property="og:image"]`,
	`link[rel="apple-touch-icon"]`,
	`link[rel="icon"]`,
	`link[rel="shortcut icon"]`,
}

// extractLogo finds the page's logo or icon and resolves it against the
// page URL so relative icon paths become absolute.
func extractLogo(doc *goquery.Document, pageURL string) string {
	for _, selector := range logoSelectors {
		sel := doc.Find(selector).First()

		raw, ok := sel.Attr("content")
		if !ok {
			raw, ok = sel.Attr("href")
		}
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}

		return resolveURL(pageURL, strings.TrimSpace(raw))
	}

	return ""
}

// resolveURL resolves ref against base; a ref that fails to parse is
// returned unchanged rather than dropped.
func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return baseURL.ResolveReference(refURL).String()
}
