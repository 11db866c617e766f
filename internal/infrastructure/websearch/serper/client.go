// Package serper gathers open-web intelligence about an entity through the
// Serper search API and distills the hits into the web component of an
// assessment.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/websearch"
	"github.com/turtacn/risknet/pkg/errors"
)

const (
	defaultBaseURL    = "https://google.serper.dev"
	defaultTimeout    = 10 * time.Second
	defaultMaxResults = 10

	// querySuffix biases the search towards compliance-relevant coverage.
	querySuffix = " sanctions risk compliance investigation"
)

var _ appassessment.WebIntelligenceProvider = (*Client)(nil)

// Config holds the search parameters.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxResults int
}

// Client queries the Serper API and classifies the hits with the injected
// indicator matcher. It implements the application's
// WebIntelligenceProvider port.
type Client struct {
	config     Config
	httpClient *http.Client
	matcher    domain.IndicatorMatcher
	logger     logging.Logger
}

// NewClient builds a web-search client. Passing a nil matcher uses the
// built-in keyword table.
func NewClient(cfg Config, matcher domain.IndicatorMatcher, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if matcher == nil {
		matcher = domain.NewKeywordMatcher(nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		matcher:    matcher,
		logger:     log,
	}
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Gather implements the WebIntelligenceProvider port.
func (c *Client) Gather(ctx context.Context, e entity.Logical) (domain.WebIntelResult, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return domain.WebIntelResult{}, errors.New(errors.ErrCodeValidation, "entity name must not be empty")
	}

	organic, err := c.search(ctx, `"`+name+`"`+querySuffix)
	if err != nil {
		return domain.WebIntelResult{}, err
	}
	if len(organic) > c.config.MaxResults {
		organic = organic[:c.config.MaxResults]
	}
	if len(organic) == 0 {
		return domain.WebIntelResult{Status: domain.StatusEmpty}, nil
	}

	hits := make([]websearch.Hit, 0, len(organic))
	for _, item := range organic {
		hits = append(hits, websearch.Hit{Title: item.Title, Snippet: item.Snippet, URL: item.Link})
	}
	res := websearch.Analyze(c.matcher, hits)
	c.logger.Debug("web intelligence gathered",
		logging.String("entity", name),
		logging.Int("findings", len(res.Findings)),
		logging.Int("indicators", len(res.Indicators)),
		logging.Int("trusted_hits", res.TrustedHits))
	return res, nil
}

func (c *Client) search(ctx context.Context, query string) ([]organicResult, error) {
	payload, err := json.Marshal(searchRequest{Query: query, Num: c.config.MaxResults})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to build search request")
	}
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "web search request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf(errors.ErrCodeSourceAuthFailed, "web search rejected: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrCodeSourceRateLimited, "web search rate limited")
	default:
		return nil, errors.Newf(errors.ErrCodeSourceUnavailable, "web search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to read search response")
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceMalformed, "failed to decode search response")
	}
	return decoded.Organic, nil
}

