package adversemedia

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// articleMapping keeps the fields the provider queries full-text and the
// rest as keywords.
const articleMapping = `{
	"mappings": {
		"properties": {
			"title":        {"type": "text"},
			"body":         {"type": "text"},
			"url":          {"type": "keyword"},
			"source":       {"type": "keyword"},
			"published_at": {"type": "date"}
		}
	}
}`

const assessmentMapping = `{
	"mappings": {
		"properties": {
			"assessment_id": {"type": "keyword"},
			"fingerprint":   {"type": "keyword"},
			"input_type":    {"type": "keyword"},
			"risk_score":    {"type": "integer"},
			"risk_level":    {"type": "keyword"},
			"occurred_at":   {"type": "date"}
		}
	}
}`

// Indexer writes adverse-media articles and completed-assessment events into
// their OpenSearch indexes.
type Indexer struct {
	api     API
	indices IndicesAPI
	config  Config
	logger  logging.Logger
}

// NewIndexer builds an indexer over an already connected client. indices may
// be nil when index bootstrap is not needed (EnsureIndexes then fails).
func NewIndexer(api API, indices IndicesAPI, cfg Config, log logging.Logger) *Indexer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Indexer{api: api, indices: indices, config: cfg.withDefaults(), logger: log}
}

// EnsureIndexes creates the article and assessment indexes with their
// mappings. Already-existing indexes are not an error.
func (ix *Indexer) EnsureIndexes(ctx context.Context) error {
	if ix.indices == nil {
		return errors.New(errors.ErrCodeValidation, "index management client not configured")
	}
	for _, idx := range []struct{ name, mapping string }{
		{ix.config.ArticleIndex, articleMapping},
		{ix.config.AssessmentIndex, assessmentMapping},
	} {
		_, err := ix.indices.Create(ctx, opensearchapi.IndicesCreateReq{
			Index: idx.name,
			Body:  strings.NewReader(idx.mapping),
		})
		if err != nil {
			if strings.Contains(err.Error(), "resource_already_exists_exception") {
				continue
			}
			return errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to create index "+idx.name)
		}
		ix.logger.Info("created opensearch index", logging.String("index", idx.name))
	}
	return nil
}

// IndexArticle writes one adverse-media article. The document ID is derived
// from the URL so re-seeding the same corpus is idempotent; articles without
// a URL get content-derived IDs.
func (ix *Indexer) IndexArticle(ctx context.Context, art Article) error {
	if strings.TrimSpace(art.Title) == "" {
		return errors.New(errors.ErrCodeValidation, "article title must not be empty")
	}
	if art.PublishedAt.IsZero() {
		art.PublishedAt = time.Now().UTC()
	}

	body, err := json.Marshal(art)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode article")
	}
	docID := art.URL
	if docID == "" {
		docID = art.Title
	}

	_, err = ix.api.Index(ctx, opensearchapi.IndexReq{
		Index:      ix.config.ArticleIndex,
		DocumentID: contentID(docID),
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to index article")
	}
	ix.logger.Debug("indexed adverse media article", logging.String("title", art.Title))
	return nil
}

// IndexCompleted writes one completed-assessment event, keyed by assessment
// ID so event replays overwrite rather than duplicate.
func (ix *Indexer) IndexCompleted(ctx context.Context, ev appassessment.CompletedEvent) error {
	if ev.AssessmentID == "" {
		return errors.New(errors.ErrCodeValidation, "assessment id must not be empty")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode assessment event")
	}

	_, err = ix.api.Index(ctx, opensearchapi.IndexReq{
		Index:      ix.config.AssessmentIndex,
		DocumentID: ev.AssessmentID,
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSourceUnavailable, "failed to index assessment")
	}
	return nil
}

func contentID(s string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(sum[:])
}
