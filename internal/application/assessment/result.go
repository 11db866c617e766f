package assessment

import (
	"time"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
)

// Mode selects how the fan-out collects the sources.
type Mode string

const (
	// ModeParallel issues the source calls concurrently. This is the
	// default; both modes feed the aggregator the same SourceSet, so the
	// score never depends on the mode.
	ModeParallel Mode = "parallel"
	// ModeSequential issues them one after another. Selected when fast
	// mode is switched off, which helps when tracing source behavior.
	ModeSequential Mode = "sequential"
)

// Recommendation is one actionable follow-up attached to a result.
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Result is the complete assessment document returned by the API, cached by
// fingerprint, and archived to object storage.
type Result struct {
	AssessmentID string           `json:"assessment_id"`
	InputType    entity.InputType `json:"input_type"`
	Entities     []entity.Logical `json:"entities"`

	RiskScore       int                  `json:"risk_score"`
	RiskLevel       domain.RiskLevel     `json:"risk_level"`
	ComponentScores domain.Components    `json:"component_scores"`
	Weights         domain.Weights       `json:"weights"`
	RiskFactors     []domain.RiskFactor  `json:"risk_factors"`
	DegradedSources []domain.SourceName  `json:"degraded_sources,omitempty"`

	Sanctions     []domain.SanctionsResult  `json:"sanctions"`
	Web           []domain.WebIntelResult   `json:"web_intelligence"`
	AISummary     domain.AISummaryResult    `json:"ai_summary"`
	Relationships domain.RelationshipResult `json:"relationships"`

	Recommendations []Recommendation `json:"recommendations"`

	Fingerprint    string        `json:"fingerprint"`
	Cached         bool          `json:"cached"`
	ProcessingMode Mode          `json:"processing_mode"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}
