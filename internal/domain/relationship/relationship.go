// Package relationship defines the graph-side view of assessed entities:
// the node and edge types written during an assessment and the store
// contract the application layer depends on. The Neo4j implementation lives
// in internal/infrastructure/database/neo4j.
package relationship

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
)

// Type labels an edge between two graph entities.
type Type string

const (
	// TypeAssociatedWith links a person to a company named in the same
	// assessment request.
	TypeAssociatedWith Type = "ASSOCIATED_WITH"
	// TypeDirectorOf links a person to a company they direct.
	TypeDirectorOf Type = "DIRECTOR_OF"
	// TypeMentionedIn links an entity to a web source that covered it.
	TypeMentionedIn Type = "MENTIONED_IN"
	// TypeHasRisk links an entity to a risk indicator node.
	TypeHasRisk Type = "HAS_RISK"
	// TypeHasSanction links an entity to a sanctions listing node.
	TypeHasSanction Type = "HAS_SANCTION"
)

// Edge is one relationship discovered or created in the graph.
type Edge struct {
	Type        Type   `json:"type"`
	FromID      string `json:"from_id"`
	ToID        string `json:"to_id,omitempty"`
	RelatedName string `json:"related_name,omitempty"`
	RelatedKind string `json:"related_kind,omitempty"`
}

// GraphStats summarizes the graph for the statistics endpoint.
type GraphStats struct {
	Persons       int64 `json:"persons"`
	Companies     int64 `json:"companies"`
	Relationships int64 `json:"relationships"`
}

// Store is the relationship-graph contract consumed by the assessment
// coordinator. Implementations must be safe for concurrent use.
type Store interface {
	// UpsertEntity merges the logical entity into the graph together with
	// its screening evidence (web findings, indicators, sanctions matches)
	// and returns the graph entity ID.
	UpsertEntity(ctx context.Context, e entity.Logical, sanctions assessment.SanctionsResult, web assessment.WebIntelResult) (string, error)

	// LinkEntities creates (or refreshes) a typed edge between two graph
	// entities.
	LinkEntities(ctx context.Context, fromID, toID string, typ Type) error

	// FindRelated returns the edges attached to the given graph entity.
	FindRelated(ctx context.Context, entityID string) ([]Edge, error)

	// Stats returns graph-wide counts.
	Stats(ctx context.Context) (GraphStats, error)

	// Ping verifies connectivity for health checks.
	Ping(ctx context.Context) error
}

// EntityID derives the deterministic graph identifier for a logical entity:
// kind prefix plus a short hash of the normalized name, matching the
// convention used by the seeded graph data.
func EntityID(e entity.Logical) string {
	name := strings.ToLower(strings.TrimSpace(e.Name))
	sum := md5.Sum([]byte(name))
	return string(e.Kind) + "_" + hex.EncodeToString(sum[:])[:8]
}
