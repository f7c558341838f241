package applestore

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pricescope/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client fetches Apple store pages and extracts the embedded product data.
// A politeness limiter spaces successive requests; each fetch has a
// bounded timeout so a hung request cannot stall the run.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a store client. requestDelay is the politeness delay
// between successive requests; one second is the courteous default.
func NewClient(baseURL string, requestDelay time.Duration, timeout time.Duration) *Client {
	if requestDelay <= 0 {
		requestDelay = time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   "PriceScope/1.0",
		rateLimiter: rate.NewLimiter(rate.Every(requestDelay), 1),
		debug:       false,
	}
}

// SetDebug enables per-request debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// FetchProducts retrieves the raw product entries on one model's buy page
// for one region.
func (c *Client) FetchProducts(ctx context.Context, category domain.Category, model string, region domain.Region) ([]domain.RawProduct, error) {
	pageURL := fmt.Sprintf("%s%s/shop/%s/%s", c.baseURL, region.URLPrefix(), category.BuyPath(), model)
	if c.debug {
		log.Printf("[STORE] Fetching %s for region %s", pageURL, region.DisplayName)
	}

	body, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	block, err := extractMetricsBlock(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoProductData, pageURL)
	}

	products, err := MapProducts(block, region, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoProductData, err)
	}

	if c.debug {
		log.Printf("[STORE] Found %d products at %s", len(products), pageURL)
	}
	return products, nil
}

// DiscoverModels scans the category's buy page for links to model pages
// and returns the unique slugs. An unreachable or linkless page yields an
// empty result, not an error severe enough to abort the run.
func (c *Client) DiscoverModels(ctx context.Context, category domain.Category, region domain.Region) ([]string, error) {
	pageURL := fmt.Sprintf("%s%s/shop/%s", c.baseURL, region.URLPrefix(), category.BuyPath())

	body, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	models := extractModelSlugs(body, category.BuyPath())
	if len(models) == 0 {
		return nil, domain.ErrNoModelsFound
	}
	return models, nil
}

// fetchPage executes one throttled GET with a single retry on transient
// failure.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrPageUnavailable, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d for %s", domain.ErrPageUnavailable, resp.StatusCode, pageURL)
			continue
		}
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrPageUnavailable, readErr)
			continue
		}

		return string(body), nil
	}
	return "", lastErr
}

// extractMetricsBlock locates the <script type="application/json"
// id="metrics"> element and returns its JSON payload. The page is scanned
// as text; the data block is static, so no DOM parsing is needed.
func extractMetricsBlock(html string) (string, error) {
	idx := strings.Index(html, `id="metrics"`)
	if idx == -1 {
		return "", domain.ErrNoProductData
	}

	// Walk back to the opening <script tag and confirm it is the JSON one.
	tagStart := strings.LastIndex(html[:idx], "<script")
	if tagStart == -1 {
		return "", domain.ErrNoProductData
	}
	tagEnd := strings.Index(html[tagStart:], ">")
	if tagEnd == -1 {
		return "", domain.ErrNoProductData
	}
	openTag := html[tagStart : tagStart+tagEnd+1]
	if !strings.Contains(openTag, "application/json") {
		return "", domain.ErrNoProductData
	}

	contentStart := tagStart + tagEnd + 1
	contentEnd := strings.Index(html[contentStart:], "</script>")
	if contentEnd == -1 {
		return "", domain.ErrNoProductData
	}

	payload := strings.TrimSpace(html[contentStart : contentStart+contentEnd])
	if payload == "" {
		return "", domain.ErrNoProductData
	}
	return payload, nil
}

// extractModelSlugs collects model slugs from hrefs of the form
// /shop/<buyPath>/<slug> anywhere in the page.
func extractModelSlugs(html, buyPath string) []string {
	marker := "/shop/" + buyPath + "/"
	seen := make(map[string]bool)
	var models []string

	for idx := strings.Index(html, marker); idx != -1; {
		rest := html[idx+len(marker):]
		end := strings.IndexAny(rest, `"'?#/<> `)
		if end == -1 {
			end = len(rest)
		}
		slug := rest[:end]
		if slug != "" && !seen[slug] {
			seen[slug] = true
			models = append(models, slug)
		}

		next := strings.Index(rest, marker)
		if next == -1 {
			break
		}
		idx = idx + len(marker) + next
	}

	return models
}
