// Package ai condenses the collected assessment evidence into a narrative
// risk summary. The primary summarizer talks to an OpenAI-compatible chat
// API (DeepSeek works through the base-URL override); a rule-based fallback
// covers deployments without an API key and failed calls.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.2
	defaultTimeout     = 30 * time.Second

	maxEvidenceItems = 10
	maxKeyFindings   = 5

	systemPrompt = "You are a risk analyst specializing in sanctions, compliance, " +
		"and entity due diligence. Analyze the provided evidence and respond with " +
		"a JSON object containing exactly these fields: " +
		`"summary" (string, at most three sentences), ` +
		`"risk_score" (number 0-100), ` +
		`"sentiment" (one of "negative", "neutral", "positive"), ` +
		`"confidence" (number 0-1), ` +
		`"key_findings" (array of strings). ` +
		"Base your assessment only on the evidence given; do not invent facts."
)

var _ appassessment.Summarizer = (*OpenAISummarizer)(nil)

// Config holds the summarizer parameters.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// chatCompleter is the slice of the OpenAI client the summarizer uses;
// *openai.Client satisfies it and tests substitute a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAISummarizer sends the evidence to a chat-completion API and parses
// the structured verdict.
type OpenAISummarizer struct {
	api    chatCompleter
	config Config
	logger logging.Logger
}

// NewOpenAISummarizer builds the API-backed summarizer. It fails when no
// API key is configured; callers wanting key-optional behavior wrap it in
// a Chain with the rule-based fallback.
func NewOpenAISummarizer(cfg Config, log logging.Logger) (*OpenAISummarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeAIUnavailable, "no API key configured")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return newOpenAISummarizer(openai.NewClientWithConfig(clientCfg), cfg, log), nil
}

func newOpenAISummarizer(api chatCompleter, cfg Config, log logging.Logger) *OpenAISummarizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	return &OpenAISummarizer{api: api, config: cfg, logger: log}
}

// verdict is the JSON shape the model is instructed to return.
type verdict struct {
	Summary     string   `json:"summary"`
	RiskScore   float64  `json:"risk_score"`
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	KeyFindings []string `json:"key_findings"`
}

// Summarize implements the application's Summarizer port.
func (s *OpenAISummarizer) Summarize(ctx context.Context, req appassessment.SummaryRequest) (domain.AISummaryResult, error) {
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: FormatEvidence(req)},
		},
	})
	if err != nil {
		return domain.AISummaryResult{}, errors.Wrap(err, errors.ErrCodeAIUnavailable, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return domain.AISummaryResult{}, errors.New(errors.ErrCodeAIBadResponse, "chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return domain.AISummaryResult{}, errors.Wrap(err, errors.ErrCodeAIBadResponse, "failed to parse model verdict")
	}
	if strings.TrimSpace(v.Summary) == "" {
		return domain.AISummaryResult{}, errors.New(errors.ErrCodeAIBadResponse, "model verdict has no summary")
	}

	if v.RiskScore < 0 {
		v.RiskScore = 0
	}
	if v.RiskScore > 100 {
		v.RiskScore = 100
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	if len(v.KeyFindings) > maxKeyFindings {
		v.KeyFindings = v.KeyFindings[:maxKeyFindings]
	}

	s.logger.Debug("AI summary produced",
		logging.String("model", s.config.Model),
		logging.Float64("risk_score", v.RiskScore),
		logging.Float64("confidence", v.Confidence))

	return domain.AISummaryResult{
		Status:      domain.StatusOK,
		Summary:     v.Summary,
		Score:       v.RiskScore,
		Sentiment:   normalizeSentiment(v.Sentiment),
		Confidence:  v.Confidence,
		KeyFindings: v.KeyFindings,
		Provider:    s.config.Model,
	}, nil
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "negative", "neutral", "positive":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return "neutral"
	}
}

// FormatEvidence renders the collected evidence as the user prompt: the
// screened entities, their sanctions matches, and the top web findings.
func FormatEvidence(req appassessment.SummaryRequest) string {
	var b strings.Builder

	b.WriteString("Assess the risk of the following entities.\n\nEntities:\n")
	for _, e := range req.Entities {
		fmt.Fprintf(&b, "- %s (%s)", e.Name, e.Kind)
		if e.Country != "" {
			fmt.Fprintf(&b, ", country %s", e.Country)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nSanctions screening:\n")
	any := false
	for i, r := range req.Sanctions {
		for _, m := range r.Matches {
			any = true
			fmt.Fprintf(&b, "- entity %d matched %q (confidence %.0f, topics: %s)\n",
				i+1, m.Name, m.Confidence, strings.Join(m.Topics, ", "))
		}
	}
	if !any {
		b.WriteString("- no watchlist matches\n")
	}

	b.WriteString("\nWeb findings:\n")
	count := 0
	for _, r := range req.Web {
		for _, f := range r.Findings {
			if count >= maxEvidenceItems {
				break
			}
			count++
			fmt.Fprintf(&b, "%d. %s\n   Source: %s\n   Content: %s\n", count, f.Title, f.Source, f.Snippet)
		}
	}
	if count == 0 {
		b.WriteString("- no web findings\n")
	}

	return b.String()
}
