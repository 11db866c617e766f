// Package opensanctions screens entities against the OpenSanctions
// consolidated watchlist API and maps the hits onto the sanctions component
// of an assessment.
package opensanctions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

var _ appassessment.SanctionsProvider = (*Client)(nil)

const (
	defaultBaseURL        = "https://api.opensanctions.org"
	defaultTimeout        = 15 * time.Second
	defaultMatchThreshold = 70.0
	defaultMaxMatches     = 5
	searchLimit           = 10
	userAgent             = "risknet/1.0"
)

// topicBonuses raise the component score per matched watchlist topic.
// Topics are matched by substring so dotted taxonomy entries like
// "crime.terror" pick up their parent bonus.
var topicBonuses = []struct {
	substr string
	bonus  float64
}{
	{"weapon", 35},
	{"terror", 30},
	{"sanction", 25},
	{"mil", 25},
	{"pep", 20},
	{"crime", 15},
	{"corrupt", 15},
}

// topicFactors are the human-readable risk factors attached per topic.
var topicFactors = []struct {
	substr string
	factor string
}{
	{"sanction", "Subject to economic sanctions"},
	{"terror", "Terrorism related"},
	{"crime", "Criminal activity reported"},
	{"pep", "Politically exposed person"},
	{"corrupt", "Corruption related"},
	{"weapon", "Weapons proliferation related"},
}

// Config holds the screening parameters.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MatchThreshold float64
	MaxMatches     int
}

// Client queries the OpenSanctions search API. It implements the
// application's SanctionsProvider port.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient builds a screening client. The zero values of Config fall back
// to the public API endpoint and the standard screening thresholds.
func NewClient(cfg Config, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = defaultMatchThreshold
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = defaultMaxMatches
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

// searchResponse is the shape of GET /search/default.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         string `json:"id"`
	Datasets   []string `json:"datasets"`
	Properties struct {
		Name    []string `json:"name"`
		Alias   []string `json:"alias"`
		Topics  []string `json:"topics"`
		Country []string `json:"country"`
	} `json:"properties"`
}

// Screen implements the SanctionsProvider port. A request that reaches the
// API but matches nothing returns an empty-status result; transport and
// decoding failures surface as SRC_* errors for the fan-out to absorb.
func (c *Client) Screen(ctx context.Context, e entity.Logical) (domain.SanctionsResult, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return domain.SanctionsResult{}, errors.New(errors.ErrCodeValidation, "entity name must not be empty")
	}

	results, err := c.search(ctx, name)
	if err != nil {
		return domain.SanctionsResult{}, err
	}

	matches := c.matchResults(name, results)
	if len(matches) == 0 {
		return domain.SanctionsResult{Status: domain.StatusEmpty}, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > c.config.MaxMatches {
		matches = matches[:c.config.MaxMatches]
	}

	res := domain.SanctionsResult{
		Status:     domain.StatusOK,
		Matched:    true,
		Confidence: matches[0].Confidence,
		Score:      scoreMatches(matches),
		Matches:    matches,
		Factors:    extractFactors(matches),
	}
	c.logger.Debug("sanctions screening hit",
		logging.String("entity", name),
		logging.Int("matches", len(matches)),
		logging.Float64("confidence", res.Confidence),
		logging.Float64("score", res.Score))
	return res, nil
}

func (c *Client) search(ctx context.Context, name string) ([]searchResult, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", fmt.Sprintf("%d", searchLimit))
	q.Set("fuzzy", "true")

	endpoint := c.config.BaseURL + "/search/default?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to build search request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "sanctions search request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf(errors.ErrCodeSourceAuthFailed, "sanctions search rejected: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrCodeSourceRateLimited, "sanctions search rate limited")
	default:
		return nil, errors.Newf(errors.ErrCodeSourceUnavailable, "sanctions search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to read search response")
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceMalformed, "failed to decode search response")
	}
	return decoded.Results, nil
}

// matchResults keeps the API hits whose best name (or alias) similarity
// clears the screening threshold.
func (c *Client) matchResults(searchName string, results []searchResult) []domain.SanctionsMatch {
	var matches []domain.SanctionsMatch
	for _, r := range results {
		names := append([]string{}, r.Properties.Name...)
		names = append(names, r.Properties.Alias...)

		var bestName string
		var bestRatio float64
		for _, n := range names {
			if ratio := domain.NameRatio(searchName, n); ratio > bestRatio {
				bestRatio = ratio
				bestName = n
			}
		}
		if bestRatio < c.config.MatchThreshold {
			continue
		}
		matches = append(matches, domain.SanctionsMatch{
			Name:       bestName,
			EntityID:   r.ID,
			Confidence: bestRatio,
			Topics:     r.Properties.Topics,
			Datasets:   r.Datasets,
		})
	}
	return matches
}

// scoreMatches derives the component score: the best match's confidence
// carries 90% as the base, each extra match adds 15 up to 40, and every
// high-risk topic across the kept matches adds its bonus. Capped at 100.
func scoreMatches(matches []domain.SanctionsMatch) float64 {
	score := matches[0].Confidence * 0.9
	if len(matches) > 1 {
		extra := float64(len(matches)) * 15
		if extra > 40 {
			extra = 40
		}
		score += extra
	}
	for _, m := range matches {
		for _, topic := range m.Topics {
			t := strings.ToLower(topic)
			for _, tb := range topicBonuses {
				if strings.Contains(t, tb.substr) {
					score += tb.bonus
					break
				}
			}
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// extractFactors renders the deduplicated risk-factor strings for the kept
// matches, in first-seen order.
func extractFactors(matches []domain.SanctionsMatch) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(f string) {
		if _, dup := seen[f]; dup {
			return
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	for _, m := range matches {
		for _, topic := range m.Topics {
			t := strings.ToLower(topic)
			for _, tf := range topicFactors {
				if strings.Contains(t, tf.substr) {
					add(tf.factor)
				}
			}
		}
		for _, ds := range m.Datasets {
			if strings.Contains(strings.ToLower(ds), "sdn") {
				add("Listed on OFAC SDN")
			}
		}
	}
	return out
}
