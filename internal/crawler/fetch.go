package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mibarrio-uy/listing-harvester/pkg/httpclient"
)

// HTTPFetcher fetches page HTML over plain HTTP. It is the scrape_mode=http
// alternative for pages the source site renders server-side; the browser
// session covers pages that need client-side rendering.
type HTTPFetcher struct {
	client    httpclient.Client
	userAgent string
}

// NewHTTPFetcher builds an HTTP page fetcher with the given client.
func NewHTTPFetcher(client httpclient.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// HTML fetches the page body at url.
func (f *HTTPFetcher) HTML(ctx context.Context, url string) (string, error) {
	headers := map[string]string{}
	if f.userAgent != "" {
		headers["User-Agent"] = f.userAgent
	}

	resp, err := f.client.Get(ctx, url, headers)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status %d fetching %s", resp.StatusCode(), url)
	}
	return string(resp.Body()), nil
}

// ListingURLs extracts unique business detail URLs from a listing index
// page. Only anchors that wrap an h2 are business cards; other /local/ links
// are navigation chrome. Relative hrefs resolve against the site origin.
func ListingURLs(html, origin string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	var urls []string
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/local/"]`).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("h2").Length() == 0 {
			return
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = strings.TrimRight(origin, "/") + href
		}
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		urls = append(urls, full)
	})

	return urls, nil
}
