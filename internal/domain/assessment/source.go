// Package assessment holds the scoring core of RiskNet: per-source result
// types, score normalization, weight selection, and the final aggregation
// into a risk score, level, and factor list. Everything in this package is
// pure computation; talking to the outside world is the application layer's
// job.
package assessment

// SourceName identifies one of the four intelligence sources consulted per
// assessment.
type SourceName string

const (
	SourceSanctions     SourceName = "sanctions"
	SourceWeb           SourceName = "web_intelligence"
	SourceAI            SourceName = "ai_analysis"
	SourceRelationships SourceName = "relationships"
)

// AllSources lists the sources in their canonical compilation order. Factor
// lists and component breakdowns always follow this order.
var AllSources = []SourceName{SourceSanctions, SourceWeb, SourceAI, SourceRelationships}

// SourceStatus records how a source call concluded. Anything other than
// StatusOK or StatusEmpty means the source degraded to a neutral result.
type SourceStatus string

const (
	// StatusOK means the source responded with usable findings.
	StatusOK SourceStatus = "ok"
	// StatusEmpty means the source responded but found nothing.
	StatusEmpty SourceStatus = "empty"
	// StatusTimedOut means the per-source deadline elapsed.
	StatusTimedOut SourceStatus = "timed_out"
	// StatusUnavailable means the source could not be reached or is not
	// configured.
	StatusUnavailable SourceStatus = "unavailable"
	// StatusMalformed means the source responded with data we could not use.
	StatusMalformed SourceStatus = "malformed"
	// StatusSkipped means the source was never invoked for this request
	// (not configured, or deliberately bypassed).
	StatusSkipped SourceStatus = "skipped"
)

// Participated reports whether the source actually ran and produced a usable
// (possibly empty) answer. Sources that did not participate are excluded
// from the weighted combination and their weight redistributed.
func (s SourceStatus) Participated() bool {
	return s == StatusOK || s == StatusEmpty
}

// Degraded reports whether the status represents a failure absorbed into a
// neutral result.
func (s SourceStatus) Degraded() bool {
	switch s {
	case StatusTimedOut, StatusUnavailable, StatusMalformed:
		return true
	}
	return false
}

// SanctionsMatch is a single hit against a sanctions or watchlist dataset.
type SanctionsMatch struct {
	Name       string   `json:"name"`
	EntityID   string   `json:"entity_id,omitempty"`
	Confidence float64  `json:"confidence"`
	Topics     []string `json:"topics,omitempty"`
	Datasets   []string `json:"datasets,omitempty"`
}

// SanctionsResult is the screening outcome for one logical entity.
// Score and Confidence live on [0,100].
type SanctionsResult struct {
	Status     SourceStatus     `json:"status"`
	Matched    bool             `json:"matched"`
	Confidence float64          `json:"confidence"`
	Score      float64          `json:"score"`
	Matches    []SanctionsMatch `json:"matches,omitempty"`
	Factors    []string         `json:"factors,omitempty"`
}

// NeutralSanctions returns the zero-contribution result recorded when the
// sanctions source degrades.
func NeutralSanctions(status SourceStatus) SanctionsResult {
	return SanctionsResult{Status: status}
}

// WebFinding is one search result considered during web intelligence
// gathering.
type WebFinding struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	Trusted bool   `json:"trusted"`
}

// WebIntelResult is the web intelligence outcome for one logical entity.
// Indicators holds human-readable indicator descriptions; Categories the
// distinct matcher categories they came from.
type WebIntelResult struct {
	Status       SourceStatus `json:"status"`
	Findings     []WebFinding `json:"findings,omitempty"`
	Indicators   []string     `json:"indicators,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	TrustedHits  int          `json:"trusted_hits"`
	HighRiskHits int          `json:"high_risk_hits"`
	Sentiment    float64      `json:"sentiment"`
}

// NeutralWeb returns the zero-contribution result recorded when the web
// source degrades.
func NeutralWeb(status SourceStatus) WebIntelResult {
	return WebIntelResult{Status: status}
}

// AISummaryResult is the summarizer's reading of the collected evidence.
// Score lives on [0,100]; Confidence on [0,1].
type AISummaryResult struct {
	Status      SourceStatus `json:"status"`
	Summary     string       `json:"summary,omitempty"`
	Score       float64      `json:"score"`
	Sentiment   string       `json:"sentiment,omitempty"`
	Confidence  float64      `json:"confidence"`
	KeyFindings []string     `json:"key_findings,omitempty"`
	Provider    string       `json:"provider,omitempty"`
}

// NeutralAI returns the zero-contribution result recorded when the
// summarizer degrades.
func NeutralAI(status SourceStatus) AISummaryResult {
	return AISummaryResult{Status: status}
}

// RelatedEntity is one edge discovered in the relationship graph.
type RelatedEntity struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// RelationshipResult is the graph outcome for the whole request.
type RelationshipResult struct {
	Status        SourceStatus    `json:"status"`
	Relationships []RelatedEntity `json:"relationships,omitempty"`
	EntityIDs     []string        `json:"entity_ids,omitempty"`
}

// Count returns the number of discovered relationships.
func (r RelationshipResult) Count() int { return len(r.Relationships) }

// NeutralRelationships returns the zero-contribution result recorded when
// the graph degrades.
func NeutralRelationships(status SourceStatus) RelationshipResult {
	return RelationshipResult{Status: status}
}

// SourceSet is everything the fan-out collected for one assessment:
// per-entity sanctions and web results plus the request-wide AI summary and
// relationship lookup. The aggregator consumes a SourceSet and nothing else,
// which is what makes parallel and sequential collection provably
// score-equivalent.
type SourceSet struct {
	Sanctions     []SanctionsResult  `json:"sanctions"`
	Web           []WebIntelResult   `json:"web"`
	AI            AISummaryResult    `json:"ai"`
	Relationships RelationshipResult `json:"relationships"`
}

// SourceMask marks which sources participated in an assessment.
type SourceMask struct {
	Sanctions     bool
	Web           bool
	AI            bool
	Relationships bool
}

// None reports whether no source participated at all.
func (m SourceMask) None() bool {
	return !m.Sanctions && !m.Web && !m.AI && !m.Relationships
}

// ActiveMask derives the participation mask from the collected statuses.
// A per-entity source counts as participating when at least one entity got a
// usable answer.
func (s SourceSet) ActiveMask() SourceMask {
	var m SourceMask
	for _, r := range s.Sanctions {
		if r.Status.Participated() {
			m.Sanctions = true
			break
		}
	}
	for _, r := range s.Web {
		if r.Status.Participated() {
			m.Web = true
			break
		}
	}
	m.AI = s.AI.Status.Participated()
	m.Relationships = s.Relationships.Status.Participated()
	return m
}

// DegradedSources lists the sources that failed and were absorbed into
// neutral results, for inclusion in the final response.
func (s SourceSet) DegradedSources() []SourceName {
	var out []SourceName
	for _, r := range s.Sanctions {
		if r.Status.Degraded() {
			out = append(out, SourceSanctions)
			break
		}
	}
	for _, r := range s.Web {
		if r.Status.Degraded() {
			out = append(out, SourceWeb)
			break
		}
	}
	if s.AI.Status.Degraded() {
		out = append(out, SourceAI)
	}
	if s.Relationships.Status.Degraded() {
		out = append(out, SourceRelationships)
	}
	return out
}
