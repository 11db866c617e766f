// Package risk holds the wire types of the assessment API as consumed by
// external clients. They mirror the server's JSON contract without pulling
// internal packages into the SDK.
package risk

import "time"

// InputType selects which subjects an assessment request carries.
type InputType string

const (
	InputTypePerson  InputType = "person"
	InputTypeCompany InputType = "company"
	InputTypeBoth    InputType = "both"
)

// Person is the natural-person subject.
type Person struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
}

// Company is the legal-entity subject.
type Company struct {
	Name               string   `json:"name"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	Country            string   `json:"country,omitempty"`
	Directors          []string `json:"directors,omitempty"`
}

// AssessmentRequest is the POST /api/v1/assess body.
type AssessmentRequest struct {
	Type    InputType `json:"input_type"`
	Person  *Person   `json:"person,omitempty"`
	Company *Company  `json:"company,omitempty"`
}

// Entity is one screened logical entity as echoed back by the server.
type Entity struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// RiskFactor is one contributing finding with its source.
type RiskFactor struct {
	Source      string  `json:"source"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Severity    string  `json:"severity"`
}

// Recommendation is one actionable follow-up.
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// SanctionsMatch is one watchlist hit.
type SanctionsMatch struct {
	Name       string   `json:"name"`
	EntityID   string   `json:"entity_id,omitempty"`
	Confidence float64  `json:"confidence"`
	Topics     []string `json:"topics,omitempty"`
	Datasets   []string `json:"datasets,omitempty"`
}

// SanctionsResult is the screening outcome for one entity.
type SanctionsResult struct {
	Status  string           `json:"status"`
	Matched bool             `json:"matched"`
	Score   float64          `json:"score"`
	Matches []SanctionsMatch `json:"matches,omitempty"`
	Factors []string         `json:"factors,omitempty"`
}

// WebFinding is one web-intelligence hit.
type WebFinding struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	Trusted bool   `json:"trusted"`
}

// WebIntelResult is the web-intelligence outcome for one entity.
type WebIntelResult struct {
	Status       string       `json:"status"`
	Findings     []WebFinding `json:"findings,omitempty"`
	Indicators   []string     `json:"indicators,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	TrustedHits  int          `json:"trusted_hits"`
	HighRiskHits int          `json:"high_risk_hits"`
	Sentiment    float64      `json:"sentiment"`
}

// AISummary is the model's narrative verdict.
type AISummary struct {
	Status      string   `json:"status"`
	Summary     string   `json:"summary,omitempty"`
	Score       float64  `json:"score"`
	Sentiment   string   `json:"sentiment,omitempty"`
	Confidence  float64  `json:"confidence"`
	KeyFindings []string `json:"key_findings,omitempty"`
	Provider    string   `json:"provider,omitempty"`
}

// AssessmentResult is the full assessment document returned by the API.
type AssessmentResult struct {
	AssessmentID string    `json:"assessment_id"`
	InputType    InputType `json:"input_type"`
	Entities     []Entity  `json:"entities"`

	RiskScore       int                `json:"risk_score"`
	RiskLevel       string             `json:"risk_level"`
	ComponentScores map[string]float64 `json:"component_scores"`
	Weights         map[string]float64 `json:"weights"`
	RiskFactors     []RiskFactor       `json:"risk_factors"`
	DegradedSources []string           `json:"degraded_sources,omitempty"`

	Sanctions []SanctionsResult `json:"sanctions"`
	Web       []WebIntelResult  `json:"web_intelligence"`
	AISummary AISummary         `json:"ai_summary"`

	Recommendations []Recommendation `json:"recommendations"`

	Fingerprint    string    `json:"fingerprint"`
	Cached         bool      `json:"cached"`
	ProcessingMode string    `json:"processing_mode"`
	CreatedAt      time.Time `json:"created_at"`
}

// Statistics is the service counters snapshot.
type Statistics struct {
	TotalRequests   int64            `json:"total_requests"`
	CacheHits       int64            `json:"cache_hits"`
	CacheHitRatio   float64          `json:"cache_hit_ratio"`
	FailedRequests  int64            `json:"failed_requests"`
	ByLevel         map[string]int64 `json:"assessments_by_level"`
	DegradedCounts  map[string]int64 `json:"degraded_by_source"`
	FastMode        bool             `json:"fast_mode"`
	StartedAt       time.Time        `json:"started_at"`
}

// StatisticsResponse joins the service counters with optional graph totals.
type StatisticsResponse struct {
	Service Statistics       `json:"service"`
	Graph   map[string]int64 `json:"graph,omitempty"`
}

// HistoryRecord is one audit row from the recent-assessments endpoint.
type HistoryRecord struct {
	AssessmentID string    `json:"assessment_id"`
	Fingerprint  string    `json:"fingerprint"`
	InputType    InputType `json:"input_type"`
	PrimaryName  string    `json:"primary_name,omitempty"`
	RiskScore    int       `json:"risk_score"`
	RiskLevel    string    `json:"risk_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecentResponse is the recent-assessments envelope.
type RecentResponse struct {
	Assessments []HistoryRecord `json:"assessments"`
	Count       int             `json:"count"`
}
