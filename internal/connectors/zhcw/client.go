package zhcw

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
	"github.com/custodia-labs/drawsync/internal/logger"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Client fetches draw pages from the zhcw endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

var _ driven.DrawSource = (*Client)(nil)

// New creates a client. If httpClient is nil a client with cfg.Timeout is used.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:  cfg,
		http: httpClient,
		now:  time.Now,
	}
}

// PageSize returns the number of draws requested per page.
func (c *Client) PageSize() int {
	return c.cfg.PageSize
}

// FetchPage returns one page of draws, newest first.
func (c *Client) FetchPage(ctx context.Context, page int) ([]domain.RawDraw, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}

	reqURL, err := c.pageURL(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Referer", c.cfg.Referer)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetching page %d: %w: %v", page, domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w: %v", page, domain.ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			URL:        c.cfg.BaseURL,
		}
	}

	entries, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	warnIncomplete(entries)
	return entries, nil
}

// pageURL builds the request URL for a page.
func (c *Client) pageURL(page int) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url %q", domain.ErrInvalidInput, c.cfg.BaseURL)
	}

	now := c.now()
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	size := strconv.Itoa(c.cfg.PageSize)

	q := u.Query()
	q.Set("callback", "jQuery"+millis)
	q.Set("transactionType", c.cfg.TransactionType)
	q.Set("lotteryId", c.cfg.LotteryID)
	q.Set("issueCount", size)
	q.Set("type", "0")
	q.Set("pageNum", strconv.Itoa(page))
	q.Set("pageSize", size)
	q.Set("tt", strconv.FormatFloat(float64(now.UnixNano())/1e9, 'f', 6, 64))
	q.Set("_", millis)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// warnIncomplete logs entries missing a field the store needs.
// They stay in the page so its length still reflects what the remote sent.
func warnIncomplete(entries []domain.RawDraw) {
	for _, e := range entries {
		if missing := missingField(e); missing != "" {
			logger.Warn("Incomplete entry %q: missing %s", e.Issue, missing)
		}
	}
}

func missingField(e domain.RawDraw) string {
	switch {
	case strings.TrimSpace(e.Issue) == "":
		return "issue"
	case strings.TrimSpace(e.FrontNumber) == "":
		return "frontNumber"
	case strings.TrimSpace(e.BackNumber) == "":
		return "backNumber"
	}
	return ""
}
