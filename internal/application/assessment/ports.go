package assessment

import (
	"context"
	"time"

	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
)

// SanctionsProvider screens one logical entity against sanctions and
// watchlist data. Implementations report failures as AppError with one of
// the SRC_* codes; the coordinator absorbs those into neutral results.
type SanctionsProvider interface {
	Screen(ctx context.Context, e entity.Logical) (domain.SanctionsResult, error)
}

// WebIntelligenceProvider gathers adverse-media and open-web findings for
// one logical entity.
type WebIntelligenceProvider interface {
	Gather(ctx context.Context, e entity.Logical) (domain.WebIntelResult, error)
}

// SummaryRequest is the evidence handed to the summarizer: everything the
// other sources found, so the model reasons over data we already hold
// rather than hallucinating its own.
type SummaryRequest struct {
	Entities  []entity.Logical
	Sanctions []domain.SanctionsResult
	Web       []domain.WebIntelResult
}

// Summarizer condenses the collected evidence into a narrative summary with
// its own risk reading.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (domain.AISummaryResult, error)
}

// ResultCache stores completed assessments keyed by fingerprint. Get returns
// (nil, nil) on a miss; read errors are treated as misses by the caller and
// write errors are logged and dropped.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*Result, error)
	Set(ctx context.Context, fingerprint string, res *Result, ttl time.Duration) error
}

// HistoryRecord is the audit row persisted per completed assessment.
type HistoryRecord struct {
	AssessmentID string
	Fingerprint  string
	InputType    entity.InputType
	PrimaryName  string
	RiskScore    int
	RiskLevel    domain.RiskLevel
	Factors      []domain.RiskFactor
	Duration     time.Duration
	CreatedAt    time.Time
}

// HistoryStore persists assessment audit rows.
type HistoryStore interface {
	Save(ctx context.Context, rec HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]HistoryRecord, error)
	Count(ctx context.Context) (int64, error)
}

// CompletedEvent is published after every non-cached assessment.
type CompletedEvent struct {
	EventID      string               `json:"event_id"`
	AssessmentID string               `json:"assessment_id"`
	Fingerprint  string               `json:"fingerprint"`
	InputType    entity.InputType     `json:"input_type"`
	RiskScore    int                  `json:"risk_score"`
	RiskLevel    domain.RiskLevel     `json:"risk_level"`
	Degraded     []domain.SourceName  `json:"degraded_sources,omitempty"`
	OccurredAt   time.Time            `json:"occurred_at"`
}

// EventPublisher emits assessment lifecycle events. Publishing is
// best-effort; failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, ev CompletedEvent) error
}

// ReportArchiver stores the full result document in long-term object
// storage. Best-effort, like the publisher.
type ReportArchiver interface {
	Archive(ctx context.Context, res *Result) error
}
