// Package wiki is a MediaWiki Action API client used as the live-mode text
// search provider.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"movierec/internal/domain"
	"movierec/internal/textutil"
)

// Config configures the client.
type Config struct {
	// Endpoint is the api.php URL, e.g. https://en.wikipedia.org/w/api.php.
	Endpoint          string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	MemoSize          int
}

// Client fetches page intros and search results. It does not retry.
type Client struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	memo      *lru.Cache[string, string]
}

// NewClient creates a client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "movierec/1.0"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	size := cfg.MemoSize
	if size <= 0 {
		size = 256
	}
	memo, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating summary memo: %w", err)
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: t},
		limiter:   rate.NewLimiter(limit, 1),
		memo:      memo,
	}, nil
}

// Search returns up to maxResults page titles matching query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(maxResults)},
		"srprop":   {""},
	}
	var out struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// Summary returns the first sentences of the page intro for title.
// Missing pages yield domain.ErrPageNotFound and disambiguation pages
// domain.ErrAmbiguous.
func (c *Client) Summary(ctx context.Context, title string, sentences int) (string, error) {
	key := textutil.FoldTitle(title)
	if intro, ok := c.memo.Get(key); ok {
		return textutil.FirstSentences(intro, sentences), nil
	}
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|pageprops"},
		"ppprop":      {"disambiguation"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
	}
	var out struct {
		Query struct {
			Pages []struct {
				Title     string            `json:"title"`
				Missing   bool              `json:"missing"`
				Invalid   bool              `json:"invalid"`
				Extract   string            `json:"extract"`
				PageProps map[string]string `json:"pageprops"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return "", err
	}
	if len(out.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrPageNotFound, title)
	}
	page := out.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%w: %s", domain.ErrPageNotFound, title)
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		return "", fmt.Errorf("%w: %s", domain.ErrAmbiguous, title)
	}
	intro := strings.TrimSpace(page.Extract)
	if intro == "" {
		return "", fmt.Errorf("%w: %s has no extract", domain.ErrPageNotFound, title)
	}
	c.memo.Add(key, intro)
	return textutil.FirstSentences(intro, sentences), nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("wiki request failed: %s", resp.Status)
	}
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode wiki response: %w", err)
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		return fmt.Errorf("wiki api error %s: %s", envelope.Error.Code, envelope.Error.Info)
	}
	return json.Unmarshal(raw, out)
}
