package client

import (
	"context"
	"fmt"

	"github.com/turtacn/risknet/pkg/types/risk"
)

// AssessPerson screens one natural person.
func (c *Client) AssessPerson(ctx context.Context, p risk.Person) (*risk.AssessmentResult, error) {
	return c.Assess(ctx, risk.AssessmentRequest{Type: risk.InputTypePerson, Person: &p})
}

// AssessCompany screens one legal entity.
func (c *Client) AssessCompany(ctx context.Context, co risk.Company) (*risk.AssessmentResult, error) {
	return c.Assess(ctx, risk.AssessmentRequest{Type: risk.InputTypeCompany, Company: &co})
}

// Assess runs a full risk assessment for the given request.
func (c *Client) Assess(ctx context.Context, req risk.AssessmentRequest) (*risk.AssessmentResult, error) {
	var res risk.AssessmentResult
	if err := c.post(ctx, "/api/v1/assess", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Statistics fetches the service counters and graph totals.
func (c *Client) Statistics(ctx context.Context) (*risk.StatisticsResponse, error) {
	var res risk.StatisticsResponse
	if err := c.get(ctx, "/api/v1/statistics", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Recent fetches the newest assessment audit rows, most recent first.
func (c *Client) Recent(ctx context.Context, limit int) ([]risk.HistoryRecord, error) {
	path := "/api/v1/assess/recent"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var res risk.RecentResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res.Assessments, nil
}

// SetFastMode toggles parallel source collection on the server.
func (c *Client) SetFastMode(ctx context.Context, enabled bool) (bool, error) {
	var res struct {
		FastMode bool `json:"fast_mode"`
	}
	body := map[string]bool{"enabled": enabled}
	if err := c.post(ctx, "/api/v1/fast-mode", body, &res); err != nil {
		return false, err
	}
	return res.FastMode, nil
}

// Health probes the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}
