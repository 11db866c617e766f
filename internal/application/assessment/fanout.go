package assessment

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/domain/relationship"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/risknet/pkg/errors"
)

// collector fans out to the four intelligence sources and assembles a
// SourceSet. Collection happens in two phases: sanctions and web screening
// run first (per entity), then the summarizer and the relationship graph,
// both of which consume the phase-one evidence. A failed source call is
// absorbed into a neutral result with the matching degraded status; only
// the caller-facing context being cancelled aborts collection early.
type collector struct {
	sanctions  SanctionsProvider
	web        WebIntelligenceProvider
	summarizer Summarizer
	graph      relationship.Store

	// sourceTimeout bounds the sanctions screen and the graph phase;
	// web search carries its own, longer budget because crawl-backed
	// providers routinely outlive a sanctions API round trip.
	sourceTimeout time.Duration
	webTimeout    time.Duration
	aiTimeout     time.Duration

	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// statusForErr maps a source-call error onto the degraded status recorded in
// its neutral result.
func statusForErr(err error) domain.SourceStatus {
	switch {
	case err == nil:
		return domain.StatusOK
	case errors.IsCode(err, errors.ErrCodeSourceTimeout),
		stderrors.Is(err, context.DeadlineExceeded):
		return domain.StatusTimedOut
	case errors.IsCode(err, errors.ErrCodeSourceMalformed):
		return domain.StatusMalformed
	default:
		return domain.StatusUnavailable
	}
}

// Collect runs the fan-out for the given entities. The returned SourceSet
// always has one sanctions and one web slot per entity, in entity order, so
// parallel and sequential collection produce identical inputs to the
// aggregator.
func (c *collector) Collect(ctx context.Context, entities []entity.Logical, mode Mode) domain.SourceSet {
	set := domain.SourceSet{
		Sanctions: make([]domain.SanctionsResult, len(entities)),
		Web:       make([]domain.WebIntelResult, len(entities)),
	}

	if mode == ModeSequential {
		for i, e := range entities {
			set.Sanctions[i] = c.screenSanctions(ctx, e)
			set.Web[i] = c.gatherWeb(ctx, e)
		}
		set.AI = c.summarize(ctx, entities, set.Sanctions, set.Web)
		set.Relationships = c.collectRelationships(ctx, entities, set.Sanctions, set.Web)
		return set
	}

	var wg sync.WaitGroup
	for i, e := range entities {
		wg.Add(2)
		go func(i int, e entity.Logical) {
			defer wg.Done()
			set.Sanctions[i] = c.screenSanctions(ctx, e)
		}(i, e)
		go func(i int, e entity.Logical) {
			defer wg.Done()
			set.Web[i] = c.gatherWeb(ctx, e)
		}(i, e)
	}
	wg.Wait()

	wg.Add(2)
	go func() {
		defer wg.Done()
		set.AI = c.summarize(ctx, entities, set.Sanctions, set.Web)
	}()
	go func() {
		defer wg.Done()
		set.Relationships = c.collectRelationships(ctx, entities, set.Sanctions, set.Web)
	}()
	wg.Wait()

	return set
}

func (c *collector) screenSanctions(ctx context.Context, e entity.Logical) domain.SanctionsResult {
	if c.sanctions == nil {
		return domain.NeutralSanctions(domain.StatusSkipped)
	}
	ctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.sanctions.Screen(ctx, e)
	if err != nil {
		status := degradedStatus(ctx, err)
		c.recordDegraded(domain.SourceSanctions, status, start, e.Name, err)
		return domain.NeutralSanctions(status)
	}
	prometheus.RecordSourceCall(c.metrics, string(domain.SourceSanctions), time.Since(start), "")
	return res
}

func (c *collector) gatherWeb(ctx context.Context, e entity.Logical) domain.WebIntelResult {
	if c.web == nil {
		return domain.NeutralWeb(domain.StatusSkipped)
	}
	ctx, cancel := context.WithTimeout(ctx, c.webTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.web.Gather(ctx, e)
	if err != nil {
		status := degradedStatus(ctx, err)
		c.recordDegraded(domain.SourceWeb, status, start, e.Name, err)
		return domain.NeutralWeb(status)
	}
	prometheus.RecordSourceCall(c.metrics, string(domain.SourceWeb), time.Since(start), "")
	return res
}

func (c *collector) summarize(ctx context.Context, entities []entity.Logical, sanctions []domain.SanctionsResult, web []domain.WebIntelResult) domain.AISummaryResult {
	if c.summarizer == nil {
		return domain.NeutralAI(domain.StatusSkipped)
	}
	ctx, cancel := context.WithTimeout(ctx, c.aiTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.summarizer.Summarize(ctx, SummaryRequest{
		Entities:  entities,
		Sanctions: sanctions,
		Web:       web,
	})
	if err != nil {
		status := degradedStatus(ctx, err)
		c.recordDegraded(domain.SourceAI, status, start, "", err)
		return domain.NeutralAI(status)
	}
	prometheus.RecordSourceCall(c.metrics, string(domain.SourceAI), time.Since(start), "")
	return res
}

// collectRelationships writes the assessed entities into the graph, links
// co-assessed entities, and reads back everything connected to them. Any
// graph error degrades the whole source; partial graph data would make the
// relationship component depend on how far the writes got.
func (c *collector) collectRelationships(ctx context.Context, entities []entity.Logical, sanctions []domain.SanctionsResult, web []domain.WebIntelResult) domain.RelationshipResult {
	if c.graph == nil {
		return domain.NeutralRelationships(domain.StatusSkipped)
	}
	ctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()

	start := time.Now()

	ids := make([]string, 0, len(entities))
	for i, e := range entities {
		id, err := c.graph.UpsertEntity(ctx, e, sanctions[i], web[i])
		if err != nil {
			status := degradedStatus(ctx, err)
			c.recordDegraded(domain.SourceRelationships, status, start, e.Name, err)
			return domain.NeutralRelationships(status)
		}
		if e.Kind == entity.KindCompany && len(e.Directors) > 0 {
			if err := c.linkDirectors(ctx, e, id); err != nil {
				status := degradedStatus(ctx, err)
				c.recordDegraded(domain.SourceRelationships, status, start, e.Name, err)
				return domain.NeutralRelationships(status)
			}
		}
		ids = append(ids, id)
	}

	if len(ids) == 2 {
		if err := c.graph.LinkEntities(ctx, ids[0], ids[1], relationship.TypeAssociatedWith); err != nil {
			status := degradedStatus(ctx, err)
			c.recordDegraded(domain.SourceRelationships, status, start, "", err)
			return domain.NeutralRelationships(status)
		}
	}

	seen := make(map[string]struct{})
	var related []domain.RelatedEntity
	for _, id := range ids {
		edges, err := c.graph.FindRelated(ctx, id)
		if err != nil {
			status := degradedStatus(ctx, err)
			c.recordDegraded(domain.SourceRelationships, status, start, "", err)
			return domain.NeutralRelationships(status)
		}
		for _, edge := range edges {
			key := string(edge.Type) + "|" + edge.ToID + "|" + edge.RelatedName
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			related = append(related, domain.RelatedEntity{
				Type: string(edge.Type),
				ID:   edge.ToID,
				Name: edge.RelatedName,
				Kind: edge.RelatedKind,
			})
		}
	}

	prometheus.RecordSourceCall(c.metrics, string(domain.SourceRelationships), time.Since(start), "")

	status := domain.StatusOK
	if len(related) == 0 {
		status = domain.StatusEmpty
	}
	return domain.RelationshipResult{
		Status:        status,
		Relationships: related,
		EntityIDs:     ids,
	}
}

// linkDirectors writes one person node per named company director and a
// DIRECTOR_OF edge toward the company. Director nodes carry no screening
// evidence of their own; they exist so the relationship lookup can surface
// them.
func (c *collector) linkDirectors(ctx context.Context, company entity.Logical, companyID string) error {
	for _, name := range company.Directors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		director := entity.Logical{Kind: entity.KindPerson, Name: name}
		id, err := c.graph.UpsertEntity(ctx, director, domain.NeutralSanctions(domain.StatusSkipped), domain.NeutralWeb(domain.StatusSkipped))
		if err != nil {
			return err
		}
		if err := c.graph.LinkEntities(ctx, id, companyID, relationship.TypeDirectorOf); err != nil {
			return err
		}
	}
	return nil
}

// degradedStatus resolves the status for a failed call, preferring the
// context verdict when the per-source deadline elapsed.
func degradedStatus(ctx context.Context, err error) domain.SourceStatus {
	if ctx.Err() == context.DeadlineExceeded {
		return domain.StatusTimedOut
	}
	return statusForErr(err)
}

func (c *collector) recordDegraded(source domain.SourceName, status domain.SourceStatus, start time.Time, subject string, err error) {
	took := time.Since(start)
	prometheus.RecordSourceCall(c.metrics, string(source), took, string(status))
	fields := []logging.Field{
		logging.String("source", string(source)),
		logging.String("status", string(status)),
		logging.Duration("took", took),
		logging.Err(err),
	}
	if subject != "" {
		fields = append(fields, logging.String("entity", subject))
	}
	c.logger.Warn("intelligence source degraded", fields...)
}
