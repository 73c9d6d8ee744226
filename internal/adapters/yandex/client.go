// internal/adapters/yandex/client.go
package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"booking_bot/internal/adapters/observability"
)

// Options scope every search to one city.
type Options struct {
	Lang    string // ru_RU, en_US, ...
	CityLL  string // "lon,lat" of the city centre
	CitySpn string // "dlon,dlat" of the search window
	Results int
	RPS     int
	Timeout time.Duration
}

// Client talks to the Yandex "Search by organizations" API.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	opt  Options
}

func New(base, key string, opt Options) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opt.RPS <= 0 {
		opt.RPS = 5
	}
	if opt.Results <= 0 {
		opt.Results = 1
	}
	if opt.Lang == "" {
		opt.Lang = "ru_RU"
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 20 * time.Second
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: opt.Timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(opt.RPS), opt.RPS),
		opt:  opt,
	}, nil
}

var (
	ErrUnauthorized = errors.New("yandex: unauthorized")
	ErrForbidden    = errors.New("yandex: forbidden")
	ErrRateLimited  = errors.New("yandex: rate limited")
)

type featureCollection struct {
	Features []map[string]any `json:"features"`
}

// Search returns the raw features for a business search. An empty slice is a
// normal "nothing found" answer, not an error.
func (c *Client) Search(ctx context.Context, text string) ([]map[string]any, error) {
	var out featureCollection
	if err := c.get(ctx, c.searchURL(text), &out); err != nil {
		return nil, err
	}
	return out.Features, nil
}

func (c *Client) searchURL(text string) string {
	q := url.Values{}
	q.Set("apikey", c.key)
	q.Set("text", text)
	q.Set("type", "biz")
	q.Set("lang", c.opt.Lang)
	q.Set("results", strconv.Itoa(c.opt.Results))
	if c.opt.CityLL != "" {
		q.Set("ll", c.opt.CityLL)
		if c.opt.CitySpn != "" {
			q.Set("spn", c.opt.CitySpn)
		}
		q.Set("rspn", "1")
	}
	sep := "?"
	if strings.Contains(c.base, "?") {
		sep = "&"
	}
	return c.base + sep + q.Encode()
}

// get performs a single rate-limited GET and decodes JSON into out. No retries.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "booking-bot/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("maps", "search", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("maps", "search", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode search response: %w", err)
		}
		return nil

	case http.StatusUnauthorized:
		return ErrUnauthorized

	case http.StatusForbidden:
		// invalid or expired key
		return ErrForbidden

	case http.StatusTooManyRequests:
		return ErrRateLimited

	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
