package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/risknet/pkg/types/risk"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithRetry(2, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestAssess_RoundTrip(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/assess", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req risk.AssessmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, risk.InputTypePerson, req.Type)
		assert.Equal(t, "Viktor Petrov", req.Person.Name)

		json.NewEncoder(w).Encode(risk.AssessmentResult{
			AssessmentID: "a-1",
			RiskScore:    72,
			RiskLevel:    "high",
		})
	}))

	res, err := c.AssessPerson(context.Background(), risk.Person{Name: "Viktor Petrov"})
	require.NoError(t, err)
	assert.Equal(t, "a-1", res.AssessmentID)
	assert.Equal(t, 72, res.RiskScore)
}

func TestAssess_ValidationErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"code": "COMMON_009", "message": "person.name must not be empty"})
	}))

	_, err := c.AssessPerson(context.Background(), risk.Person{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "COMMON_009", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(risk.AssessmentResult{AssessmentID: "a-2"})
	}))

	res, err := c.AssessCompany(context.Background(), risk.Company{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "a-2", res.AssessmentID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ExhaustedRetriesReturnLastError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.Statistics(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
}

func TestRecent_LimitInQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(risk.RecentResponse{
			Assessments: []risk.HistoryRecord{{AssessmentID: "a-1"}},
			Count:       1,
		})
	}))

	records, err := c.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a-1", records[0].AssessmentID)
}

func TestSetFastMode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body["enabled"])
		json.NewEncoder(w).Encode(map[string]bool{"fast_mode": true})
	}))

	on, err := c.SetFastMode(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	assert.NoError(t, c.Health(context.Background()))
}
