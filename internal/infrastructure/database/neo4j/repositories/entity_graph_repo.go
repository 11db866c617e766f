// Package repositories contains the Neo4j-backed graph stores.
package repositories

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	driver "github.com/turtacn/risknet/internal/infrastructure/database/neo4j"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"

	"github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/domain/relationship"
	"github.com/turtacn/risknet/pkg/errors"
)

// edgeTypes whitelists relationship types before they are spliced into
// Cypher; relationship types cannot be bound as parameters.
var edgeTypes = map[relationship.Type]struct{}{
	relationship.TypeAssociatedWith: {},
	relationship.TypeDirectorOf:     {},
	relationship.TypeMentionedIn:    {},
	relationship.TypeHasRisk:        {},
	relationship.TypeHasSanction:    {},
}

// maxFindingsPersisted caps how many web sources get graph nodes per
// entity; beyond that the findings add noise, not signal.
const maxFindingsPersisted = 10

// EntityGraphRepo persists assessed entities and their screening evidence
// to Neo4j and answers relationship queries.
type EntityGraphRepo struct {
	driver driver.DriverInterface
	log    logging.Logger
}

var _ relationship.Store = (*EntityGraphRepo)(nil)

// NewEntityGraphRepo builds a graph repository on top of a connected driver.
func NewEntityGraphRepo(d driver.DriverInterface, log logging.Logger) *EntityGraphRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EntityGraphRepo{driver: d, log: log}
}

// EnsureSchema creates the uniqueness constraints and lookup indexes the
// repository relies on. Safe to run on every startup.
func (r *EntityGraphRepo) EnsureSchema(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (w:WebSource) REQUIRE w.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (i:RiskIndicator) REQUIRE i.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Sanction) REQUIRE s.id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (e:Entity) ON (e.name)",
		"CREATE INDEX IF NOT EXISTS FOR (w:WebSource) ON (w.url)",
		"CREATE INDEX IF NOT EXISTS FOR (i:RiskIndicator) ON (i.category)",
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphError, "failed to ensure graph schema")
	}
	r.log.Info("Graph schema ensured")
	return nil
}

// UpsertEntity merges the entity node together with web source, risk
// indicator and sanction evidence nodes, all inside one write transaction.
func (r *EntityGraphRepo) UpsertEntity(ctx context.Context, e entity.Logical, sanctions assessment.SanctionsResult, web assessment.WebIntelResult) (string, error) {
	entityID := relationship.EntityID(e)
	now := time.Now().Unix()

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		if err := r.mergeEntityNode(ctx, tx, entityID, e, sanctions, web, now); err != nil {
			return nil, err
		}
		if err := r.mergeWebEvidence(ctx, tx, entityID, web, now); err != nil {
			return nil, err
		}
		if err := r.mergeIndicators(ctx, tx, entityID, web, now); err != nil {
			return nil, err
		}
		if err := r.mergeSanctions(ctx, tx, entityID, sanctions, now); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGraphError,
			fmt.Sprintf("failed to upsert entity %s", entityID))
	}
	return entityID, nil
}

func (r *EntityGraphRepo) mergeEntityNode(ctx context.Context, tx driver.Transaction, entityID string, e entity.Logical, sanctions assessment.SanctionsResult, web assessment.WebIntelResult, now int64) error {
	var cypher string
	switch e.Kind {
	case entity.KindPerson:
		cypher = `
			MERGE (p:Person:Entity {id: $id})
			SET p.name = $name,
			    p.kind = $kind,
			    p.email = $email,
			    p.phone = $phone,
			    p.country = $country,
			    p.risk_level = $risk_level,
			    p.updated_at = $now`
	case entity.KindCompany:
		cypher = `
			MERGE (c:Company:Entity {id: $id})
			SET c.name = $name,
			    c.kind = $kind,
			    c.registration_number = $registration_number,
			    c.country = $country,
			    c.risk_level = $risk_level,
			    c.updated_at = $now`
	default:
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown entity kind %q", e.Kind))
	}

	_, err := tx.Run(ctx, cypher, map[string]any{
		"id":                  entityID,
		"name":                e.Name,
		"kind":                string(e.Kind),
		"email":               e.Email,
		"phone":               e.Phone,
		"country":             e.Country,
		"registration_number": e.RegistrationNumber,
		"risk_level":          graphRiskLevel(sanctions, web),
		"now":                 now,
	})
	return err
}

func (r *EntityGraphRepo) mergeWebEvidence(ctx context.Context, tx driver.Transaction, entityID string, web assessment.WebIntelResult, now int64) error {
	findings := web.Findings
	if len(findings) > maxFindingsPersisted {
		findings = findings[:maxFindingsPersisted]
	}
	for _, f := range findings {
		if f.URL == "" {
			continue
		}
		_, err := tx.Run(ctx, `
			MERGE (w:WebSource {id: $source_id})
			SET w.title = $title,
			    w.url = $url,
			    w.source = $source,
			    w.trusted = $trusted
			WITH w
			MATCH (e:Entity {id: $entity_id})
			MERGE (e)-[m:MENTIONED_IN]->(w)
			SET m.created_at = $now`,
			map[string]any{
				"source_id": "source_" + shortHash(f.URL),
				"title":     f.Title,
				"url":       f.URL,
				"source":    f.Source,
				"trusted":   f.Trusted,
				"entity_id": entityID,
				"now":       now,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *EntityGraphRepo) mergeIndicators(ctx context.Context, tx driver.Transaction, entityID string, web assessment.WebIntelResult, now int64) error {
	for _, indicator := range web.Indicators {
		category := indicator
		if i := strings.Index(indicator, ":"); i > 0 {
			category = strings.TrimSpace(indicator[:i])
		}
		_, err := tx.Run(ctx, `
			MERGE (i:RiskIndicator {id: $indicator_id})
			SET i.description = $description,
			    i.category = $category
			WITH i
			MATCH (e:Entity {id: $entity_id})
			MERGE (e)-[h:HAS_RISK]->(i)
			SET h.created_at = $now`,
			map[string]any{
				"indicator_id": "risk_" + shortHash(indicator),
				"description":  indicator,
				"category":     category,
				"entity_id":    entityID,
				"now":          now,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *EntityGraphRepo) mergeSanctions(ctx context.Context, tx driver.Transaction, entityID string, sanctions assessment.SanctionsResult, now int64) error {
	for _, match := range sanctions.Matches {
		_, err := tx.Run(ctx, `
			MERGE (s:Sanction {id: $sanction_id})
			SET s.name = $name,
			    s.confidence = $confidence,
			    s.topics = $topics,
			    s.datasets = $datasets
			WITH s
			MATCH (e:Entity {id: $entity_id})
			MERGE (e)-[h:HAS_SANCTION]->(s)
			SET h.confidence = $confidence,
			    h.created_at = $now`,
			map[string]any{
				"sanction_id": "sanction_" + shortHash(match.Name),
				"name":        match.Name,
				"confidence":  match.Confidence,
				"topics":      match.Topics,
				"datasets":    match.Datasets,
				"entity_id":   entityID,
				"now":         now,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// LinkEntities merges a typed edge between two already-upserted entities.
// Returns a not-found error when either endpoint is missing.
func (r *EntityGraphRepo) LinkEntities(ctx context.Context, fromID, toID string, typ relationship.Type) error {
	if _, ok := edgeTypes[typ]; !ok {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown relationship type %q", typ))
	}

	cypher := fmt.Sprintf(`
		MATCH (a:Entity {id: $from_id})
		MATCH (b:Entity {id: $to_id})
		MERGE (a)-[r:%s]->(b)
		SET r.updated_at = $now
		RETURN type(r) AS type`, typ)

	linked, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"from_id": fromID,
			"to_id":   toID,
			"now":     time.Now().Unix(),
		})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return true, nil
		}
		return false, result.Err()
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphError,
			fmt.Sprintf("failed to link %s to %s", fromID, toID))
	}
	if ok, _ := linked.(bool); !ok {
		return errors.New(errors.ErrCodeNotFound,
			fmt.Sprintf("entity %s or %s not found in graph", fromID, toID))
	}
	return nil
}

// FindRelated returns every outgoing edge of the given entity, with the
// far node's display name and primary label.
func (r *EntityGraphRepo) FindRelated(ctx context.Context, entityID string) ([]relationship.Edge, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (e:Entity {id: $entity_id})-[r]->(n)
			RETURN type(r) AS type,
			       n.id AS to_id,
			       coalesce(n.name, n.title, n.description, '') AS related_name,
			       head(labels(n)) AS related_kind
			ORDER BY type, to_id`,
			map[string]any{"entity_id": entityID})
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, result, func(rec *neo4j.Record) (relationship.Edge, error) {
			return relationship.Edge{
				Type:        relationship.Type(stringValue(rec, "type")),
				FromID:      entityID,
				ToID:        stringValue(rec, "to_id"),
				RelatedName: stringValue(rec, "related_name"),
				RelatedKind: strings.ToLower(stringValue(rec, "related_kind")),
			}, nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphError,
			fmt.Sprintf("failed to find relations of %s", entityID))
	}
	edges, _ := res.([]relationship.Edge)
	return edges, nil
}

// Stats counts persons, companies and relationships across the graph.
func (r *EntityGraphRepo) Stats(ctx context.Context) (relationship.GraphStats, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, `
			RETURN COUNT { MATCH (:Person) } AS persons,
			       COUNT { MATCH (:Company) } AS companies,
			       COUNT { MATCH ()-[]->() } AS relationships`, nil)
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return relationship.GraphStats{}, result.Err()
		}
		rec := result.Record()
		return relationship.GraphStats{
			Persons:       intValue(rec, "persons"),
			Companies:     intValue(rec, "companies"),
			Relationships: intValue(rec, "relationships"),
		}, nil
	})
	if err != nil {
		return relationship.GraphStats{}, errors.Wrap(err, errors.ErrCodeGraphError, "failed to read graph stats")
	}
	stats, _ := res.(relationship.GraphStats)
	return stats, nil
}

// Ping verifies graph connectivity.
func (r *EntityGraphRepo) Ping(ctx context.Context) error {
	return r.driver.HealthCheck(ctx)
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// graphRiskLevel mirrors the coarse per-node labeling used by the seeded
// graph data: sanctions hits dominate, then indicator volume.
func graphRiskLevel(sanctions assessment.SanctionsResult, web assessment.WebIntelResult) string {
	if sanctions.Matched {
		return "HIGH"
	}
	if len(web.Indicators) > 2 {
		return "MEDIUM"
	}
	return "LOW"
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intValue(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}
