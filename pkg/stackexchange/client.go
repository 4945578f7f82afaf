package stackexchange

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/helmcode/laze/pkg/model"
)

const (
	DefaultBaseURL = "https://api.stackexchange.com/2.2"
	searchPath     = "/search/advanced"
	tagSeparator   = ";"
)

// Searcher runs a query against a question-and-answer search service.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) ([]model.RawItem, error)
}

type Client struct {
	baseURL string
	site    string
	key     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Options struct {
	BaseURL string
	Site    string
	Key     string
	// Timeout of zero means no timeout.
	Timeout time.Duration
	// RateLimit is in requests per second; zero disables throttling.
	RateLimit float64
	Logger    *zap.Logger
}

func NewClientWithOptions(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		site:    opts.Site,
		key:     opts.Key,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.site == "" {
		c.site = DefaultSite
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// SearchURL builds the search/advanced request for q, ordered by descending
// relevance.
func (c *Client) SearchURL(q model.SearchQuery) string {
	v := url.Values{}
	v.Set("order", "desc")
	v.Set("sort", "relevance")
	v.Set("q", q.Text)
	if q.RequireAccepted != nil {
		v.Set("accepted", strconv.FormatBool(*q.RequireAccepted))
	}
	if len(q.Tags) > 0 {
		v.Set("tagged", strings.Join(q.Tags, tagSeparator))
	}
	v.Set("site", c.site)
	if c.key != "" {
		v.Set("key", c.key)
	}
	return c.baseURL + searchPath + "?" + v.Encode()
}

func (c *Client) Search(ctx context.Context, q model.SearchQuery) ([]model.RawItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := c.SearchURL(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Explicit Accept-Encoding turns off transparent decompression.
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Searching",
		zap.String("site", c.site),
		zap.String("text", q.Text),
		zap.Strings("tags", q.Tags))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := decodeBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var seResp struct {
		Items          []model.RawItem `json:"items"`
		QuotaRemaining int             `json:"quota_remaining"`
		ErrorID        int             `json:"error_id"`
		ErrorName      string          `json:"error_name"`
		ErrorMessage   string          `json:"error_message"`
	}
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(respBytes, &seResp) == nil && seResp.ErrorMessage != "" {
			return nil, fmt.Errorf("stack exchange API error (status %d): %s: %s", resp.StatusCode, seResp.ErrorName, seResp.ErrorMessage)
		}
		return nil, fmt.Errorf("stack exchange API error (status %d): %s", resp.StatusCode, string(respBytes))
	}
	if err := json.Unmarshal(respBytes, &seResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if seResp.ErrorMessage != "" {
		return nil, fmt.Errorf("stack exchange API error: %s", seResp.ErrorMessage)
	}

	c.logger.Debug("Search complete",
		zap.Int("items", len(seResp.Items)),
		zap.Int("quota_remaining", seResp.QuotaRemaining))

	return seResp.Items, nil
}

// decodeBody reads r, gunzipping it when it starts with the gzip magic bytes.
func decodeBody(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return io.ReadAll(br)
}
