package ai

import (
	"context"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

var _ appassessment.Summarizer = (*Chain)(nil)

// Chain tries the primary summarizer and falls back to the rule-based one
// when the call fails. With no primary it goes straight to the fallback.
type Chain struct {
	primary  appassessment.Summarizer
	fallback appassessment.Summarizer
	logger   logging.Logger
}

// NewChain wires the fallback around an optional primary summarizer.
func NewChain(primary appassessment.Summarizer, log logging.Logger) *Chain {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Chain{primary: primary, fallback: NewRuleBasedSummarizer(), logger: log}
}

// Summarize implements the application's Summarizer port.
func (c *Chain) Summarize(ctx context.Context, req appassessment.SummaryRequest) (domain.AISummaryResult, error) {
	if c.primary != nil {
		res, err := c.primary.Summarize(ctx, req)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return domain.AISummaryResult{}, err
		}
		c.logger.Warn("AI summarizer failed, using rule-based fallback", logging.Err(err))
	}
	return c.fallback.Summarize(ctx, req)
}
