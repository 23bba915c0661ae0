// Package extract turns raw pages into normalized PageData. Pages
// arrive either as HTML posted by the extension's content script or as
// a URL the daemon fetches itself on the auto-capture path.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
)

const (
	// maxFallbackContentLength caps text from the non-readability path.
	maxFallbackContentLength = 10000
	// minFallbackContentLength is the threshold a candidate content
	// element must exceed before the fallback accepts it.
	minFallbackContentLength = 200
	// fetchTimeout bounds page fetches on the auto-capture path.
	fetchTimeout = 20 * time.Second
	// maxFetchBytes bounds how much of a page the daemon will read.
	maxFetchBytes = 5 << 20
)

// fallbackSelectors are tried in order when readability fails.
var fallbackSelectors = []string{
	"main", "article", `[role="main"]`, "#content", ".content", "#main", ".main", "body",
}

// Extractor fetches and extracts page content.
type Extractor struct {
	client *http.Client
	logger *zap.Logger
}

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// ExtractURL fetches the page and extracts its content.
func (e *Extractor) ExtractURL(ctx context.Context, pageURL string) (*models.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	req.Header.Set("User-Agent", "ambientd/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("page fetch returned %s", resp.Status)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}

	return e.ExtractHTML(string(html), pageURL)
}

// ExtractHTML extracts content and metadata from a raw HTML document.
func (e *Extractor) ExtractHTML(html, pageURL string) (*models.PageData, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &models.PageData{
		URL:         pageURL,
		ExtractedAt: time.Now().UTC(),
	}
	e.applyMetadata(page, doc, parsedURL)

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		page.Content = strings.TrimSpace(article.TextContent)
		page.Length = len(page.Content)
		page.Excerpt = article.Excerpt
		page.Byline = article.Byline
		if article.Title != "" {
			page.Title = article.Title
		}
		if article.SiteName != "" {
			page.SiteName = article.SiteName
		}
		if article.Favicon != "" {
			page.Favicon = article.Favicon
		}
	} else {
		if err != nil {
			e.logger.Debug("readability_failed_using_fallback",
				zap.String("url", pageURL),
				zap.Error(err),
			)
		}
		e.applyFallbackContent(page, doc, parsedURL)
	}

	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if page.Content == "" {
		return nil, fmt.Errorf("no content extracted from %s", pageURL)
	}

	e.logger.Debug("content_extracted",
		zap.String("url", pageURL),
		zap.String("title", page.Title),
		zap.Int("content_length", page.Length),
	)
	return page, nil
}

func (e *Extractor) applyMetadata(page *models.PageData, doc *goquery.Document, pageURL *url.URL) {
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		page.Language = lang
	} else {
		page.Language = "en"
	}

	page.Description = metaContent(doc, `meta[name="description"]`, `meta[property="og:description"]`)
	page.Author = metaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`)

	page.PublishDate = metaContent(doc, `meta[property="article:published_time"]`, `meta[name="publish_date"]`)
	if page.PublishDate == "" {
		if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			page.PublishDate = dt
		}
	}

	if site := metaContent(doc, `meta[property="og:site_name"]`); site != "" {
		page.SiteName = site
	} else {
		page.SiteName = pageURL.Hostname()
	}

	if href, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); ok {
		if resolved, err := pageURL.Parse(href); err == nil {
			page.Favicon = resolved.String()
		}
	}
}

// applyFallbackContent walks common content containers when
// readability produced nothing usable.
func (e *Extractor) applyFallbackContent(page *models.PageData, doc *goquery.Document, pageURL *url.URL) {
	doc.Find("script, style, noscript, iframe, object, embed").Remove()

	var text string
	for _, selector := range fallbackSelectors {
		candidate := normalizeWhitespace(doc.Find(selector).First().Text())
		if len(candidate) > minFallbackContentLength {
			text = candidate
			break
		}
	}
	if text == "" {
		text = normalizeWhitespace(doc.Find("body").Text())
	}
	if len(text) > maxFallbackContentLength {
		cut := maxFallbackContentLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	page.Content = text
	page.Length = len(text)
	if len(text) > 200 {
		cut := 200
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		page.Excerpt = text[:cut] + "..."
	} else {
		page.Excerpt = text
	}
	if page.SiteName == "" {
		page.SiteName = pageURL.Hostname()
	}
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
