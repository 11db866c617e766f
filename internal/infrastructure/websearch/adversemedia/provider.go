// Package adversemedia serves web intelligence from a locally maintained
// OpenSearch index of adverse-media articles. It is the provider used when
// no external search API is configured, and the sink that completed
// assessments are indexed into for ad hoc search.
package adversemedia

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/websearch"
	"github.com/turtacn/risknet/pkg/errors"
)

const (
	// DefaultArticleIndex holds the curated adverse-media articles.
	DefaultArticleIndex = "adverse-media-articles"
	// DefaultAssessmentIndex holds completed-assessment events for search.
	DefaultAssessmentIndex = "risknet-assessments"

	defaultMaxResults = 10
	defaultTimeout    = 10 * time.Second
)

var _ appassessment.WebIntelligenceProvider = (*Provider)(nil)

// API is the slice of the OpenSearch client the provider and indexer use.
// *opensearchapi.Client satisfies it; tests substitute a mock.
type API interface {
	Search(ctx context.Context, req *opensearchapi.SearchReq) (*opensearchapi.SearchResp, error)
	Index(ctx context.Context, req opensearchapi.IndexReq) (*opensearchapi.IndexResp, error)
	Ping(ctx context.Context, req *opensearchapi.PingReq) (*opensearch.Response, error)
}

// IndicesAPI is the index-management slice used for bootstrap. The concrete
// client's Indices field satisfies it.
type IndicesAPI interface {
	Create(ctx context.Context, req opensearchapi.IndicesCreateReq) (*opensearchapi.IndicesCreateResp, error)
}

// Config holds the adverse-media index parameters.
type Config struct {
	Addresses       []string
	Username        string
	Password        string
	ArticleIndex    string
	AssessmentIndex string
	MaxResults      int
	Timeout         time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.ArticleIndex == "" {
		cfg.ArticleIndex = DefaultArticleIndex
	}
	if cfg.AssessmentIndex == "" {
		cfg.AssessmentIndex = DefaultAssessmentIndex
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// Article is one adverse-media document in the article index.
type Article struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Connect dials the OpenSearch cluster and verifies it answers.
func Connect(ctx context.Context, cfg Config, log logging.Logger) (*opensearchapi.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one opensearch address is required")
	}
	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses:     cfg.Addresses,
			Username:      cfg.Username,
			Password:      cfg.Password,
			MaxRetries:    3,
			RetryOnStatus: []int{502, 503, 504, 429},
			Transport:     &http.Transport{MaxIdleConnsPerHost: 10},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to create opensearch client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.withDefaults().Timeout)
	defer cancel()
	if _, err := client.Ping(pingCtx, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "opensearch unreachable")
	}
	if log != nil {
		log.Info("connected to opensearch", logging.Int("addresses", len(cfg.Addresses)))
	}
	return client, nil
}

// Provider queries the article index. It implements the application's
// WebIntelligenceProvider port.
type Provider struct {
	api     API
	config  Config
	matcher domain.IndicatorMatcher
	logger  logging.Logger
}

// NewProvider builds a provider over an already connected client. Passing a
// nil matcher uses the built-in keyword table.
func NewProvider(api API, cfg Config, matcher domain.IndicatorMatcher, log logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if matcher == nil {
		matcher = domain.NewKeywordMatcher(nil)
	}
	return &Provider{api: api, config: cfg.withDefaults(), matcher: matcher, logger: log}
}

// Gather implements the WebIntelligenceProvider port: a full-text query for
// the entity name over the article index, classified the same way the
// external search provider classifies its hits.
func (p *Provider) Gather(ctx context.Context, e entity.Logical) (domain.WebIntelResult, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return domain.WebIntelResult{}, errors.New(errors.ErrCodeValidation, "entity name must not be empty")
	}

	body, err := json.Marshal(map[string]any{
		"size": p.config.MaxResults,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":    name,
				"fields":   []string{"title^2", "body"},
				"operator": "and",
			},
		},
	})
	if err != nil {
		return domain.WebIntelResult{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode article query")
	}

	resp, err := p.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{p.config.ArticleIndex},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return domain.WebIntelResult{}, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "adverse media search failed")
	}
	if len(resp.Hits.Hits) == 0 {
		return domain.WebIntelResult{Status: domain.StatusEmpty}, nil
	}

	hits := make([]websearch.Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var art Article
		if err := json.Unmarshal(h.Source, &art); err != nil {
			return domain.WebIntelResult{}, errors.Wrap(err, errors.ErrCodeSourceMalformed, "corrupt article document")
		}
		hits = append(hits, websearch.Hit{
			Title:   art.Title,
			Snippet: snippet(art.Body),
			URL:     art.URL,
			Source:  art.Source,
		})
	}

	res := websearch.Analyze(p.matcher, hits)
	p.logger.Debug("adverse media gathered",
		logging.String("entity", name),
		logging.Int("findings", len(res.Findings)),
		logging.Int("indicators", len(res.Indicators)))
	return res, nil
}

// snippet truncates an article body to the window the classifier and the
// response need.
func snippet(body string) string {
	const max = 280
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	cut := body[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
