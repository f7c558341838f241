package exchangerate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pricescope/backend/internal/domain"
)

// The bank's accessibility page renders the realtime rate table inside a
// div with this id; the USD row's third cell is the selling rate applied
// to card transactions.
const (
	rateTableMarker = `id="MainContent_tab_rate_realtime"`
	usdRowMarker    = "(USD)"
	sourceName      = "Cathay Bank"
)

var nonNumericRegex = regexp.MustCompile(`[^\d.]`)

// Client fetches the current USD selling rate from the bank's rate page.
type Client struct {
	httpClient *http.Client
	pageURL    string
}

// NewClient creates an exchange rate client
func NewClient(pageURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		pageURL:    pageURL,
	}
}

// FetchRate retrieves the current USD->TWD selling rate. Any failure maps
// to ErrRateUnavailable so callers can apply their fallback chain.
func (c *Client) FetchRate(ctx context.Context) (*domain.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRateUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}

	rate, err := parseSellingRate(string(body))
	if err != nil {
		return nil, err
	}

	return &domain.ExchangeRate{
		Rate:      rate,
		Source:    sourceName,
		FetchedAt: time.Now(),
	}, nil
}

// parseSellingRate scans the rate table for the USD row and extracts the
// selling rate from its third cell.
func parseSellingRate(html string) (float64, error) {
	tableStart := strings.Index(html, rateTableMarker)
	if tableStart == -1 {
		return 0, fmt.Errorf("%w: rate table not found", domain.ErrRateUnavailable)
	}

	usdStart := strings.Index(html[tableStart:], usdRowMarker)
	if usdStart == -1 {
		return 0, fmt.Errorf("%w: USD row not found", domain.ErrRateUnavailable)
	}

	cells := extractCells(html[tableStart+usdStart:])
	if len(cells) < 2 {
		return 0, fmt.Errorf("%w: selling rate cell not found", domain.ErrRateUnavailable)
	}

	// The marker sits inside the currency cell, so the next two cells are
	// the buying and selling rates.
	raw := nonNumericRegex.ReplaceAllString(cells[1], "")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("%w: unparseable selling rate %q", domain.ErrRateUnavailable, cells[1])
	}

	return rate, nil
}

// extractCells returns the text of the <td> cells following the given
// offset, up to the end of the row.
func extractCells(html string) []string {
	rowEnd := strings.Index(html, "</tr>")
	if rowEnd == -1 {
		rowEnd = len(html)
	}
	row := html[:rowEnd]

	var cells []string
	for {
		start := strings.Index(row, "<td")
		if start == -1 {
			break
		}
		open := strings.Index(row[start:], ">")
		if open == -1 {
			break
		}
		rest := row[start+open+1:]
		end := strings.Index(rest, "</td>")
		if end == -1 {
			break
		}
		cells = append(cells, strings.TrimSpace(rest[:end]))
		row = rest[end:]
	}
	return cells
}
