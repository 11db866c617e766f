package ai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	rerrors "github.com/turtacn/risknet/pkg/errors"
)

type stubChat struct {
	lastReq openai.ChatCompletionRequest
	content string
	err     error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func sampleRequest() appassessment.SummaryRequest {
	return appassessment.SummaryRequest{
		Entities: []entity.Logical{
			{Kind: entity.KindPerson, Name: "Viktor Petrov", Country: "RU"},
		},
		Sanctions: []domain.SanctionsResult{
			{
				Status:  domain.StatusOK,
				Matched: true,
				Matches: []domain.SanctionsMatch{
					{Name: "Viktor PETROV", Confidence: 92, Topics: []string{"sanction"}},
				},
			},
		},
		Web: []domain.WebIntelResult{
			{
				Status: domain.StatusOK,
				Findings: []domain.WebFinding{
					{Title: "Petrov under investigation", Source: "reuters.com", Snippet: "Authorities probe offshore accounts."},
				},
				Indicators:   []string{"Criminal Activity indicators found"},
				HighRiskHits: 1,
				Sentiment:    -0.4,
			},
		},
	}
}

func TestSummarize_ParsesVerdict(t *testing.T) {
	stub := &stubChat{content: `{
		"summary": "Viktor Petrov is a high-risk subject with an active watchlist match.",
		"risk_score": 82,
		"sentiment": "negative",
		"confidence": 0.85,
		"key_findings": ["OFAC watchlist match", "Offshore account investigation"]
	}`}
	s := newOpenAISummarizer(stub, Config{Model: "gpt-4o-mini"}, logging.NewNopLogger())

	res, err := s.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, 82.0, res.Score)
	assert.Equal(t, "negative", res.Sentiment)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Len(t, res.KeyFindings, 2)
	assert.Equal(t, "gpt-4o-mini", res.Provider)

	require.Len(t, stub.lastReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, stub.lastReq.Messages[0].Role)
	require.NotNil(t, stub.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, stub.lastReq.ResponseFormat.Type)
}

func TestSummarize_ClampsOutOfRangeValues(t *testing.T) {
	stub := &stubChat{content: `{"summary":"Overcooked verdict.","risk_score":140,"sentiment":"negative","confidence":1.4}`}
	s := newOpenAISummarizer(stub, Config{}, nil)

	res, err := s.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestSummarize_UnknownSentimentIsNeutral(t *testing.T) {
	stub := &stubChat{content: `{"summary":"Fine.","risk_score":10,"sentiment":"ambivalent","confidence":0.5}`}
	s := newOpenAISummarizer(stub, Config{}, nil)

	res, err := s.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "neutral", res.Sentiment)
}

func TestSummarize_APIFailure(t *testing.T) {
	stub := &stubChat{err: errors.New("rate limited")}
	s := newOpenAISummarizer(stub, Config{}, nil)

	_, err := s.Summarize(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, rerrors.IsCode(err, rerrors.ErrCodeAIUnavailable))
}

func TestSummarize_MalformedVerdict(t *testing.T) {
	stub := &stubChat{content: "Risk is high, trust me."}
	s := newOpenAISummarizer(stub, Config{}, nil)

	_, err := s.Summarize(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, rerrors.IsCode(err, rerrors.ErrCodeAIBadResponse))
}

func TestSummarize_EmptySummaryRejected(t *testing.T) {
	stub := &stubChat{content: `{"summary":"  ","risk_score":50}`}
	s := newOpenAISummarizer(stub, Config{}, nil)

	_, err := s.Summarize(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, rerrors.IsCode(err, rerrors.ErrCodeAIBadResponse))
}

func TestNewOpenAISummarizer_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAISummarizer(Config{}, nil)
	require.Error(t, err)
	assert.True(t, rerrors.IsCode(err, rerrors.ErrCodeAIUnavailable))
}

func TestFormatEvidence(t *testing.T) {
	prompt := FormatEvidence(sampleRequest())

	assert.Contains(t, prompt, "Viktor Petrov (person), country RU")
	assert.Contains(t, prompt, `matched "Viktor PETROV" (confidence 92, topics: sanction)`)
	assert.Contains(t, prompt, "1. Petrov under investigation")
	assert.Contains(t, prompt, "Source: reuters.com")
}

func TestFormatEvidence_NoEvidence(t *testing.T) {
	prompt := FormatEvidence(appassessment.SummaryRequest{
		Entities: []entity.Logical{{Kind: entity.KindCompany, Name: "Acme Ltd"}},
	})

	assert.Contains(t, prompt, "no watchlist matches")
	assert.Contains(t, prompt, "no web findings")
}

func TestFormatEvidence_CapsWebFindings(t *testing.T) {
	req := sampleRequest()
	var findings []domain.WebFinding
	for i := 0; i < 15; i++ {
		findings = append(findings, domain.WebFinding{Title: "finding", Snippet: "text"})
	}
	req.Web = []domain.WebIntelResult{{Status: domain.StatusOK, Findings: findings}}

	prompt := FormatEvidence(req)
	assert.Contains(t, prompt, "10. finding")
	assert.NotContains(t, prompt, "11. finding")
}
