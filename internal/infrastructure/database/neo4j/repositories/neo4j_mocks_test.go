package repositories

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"
	infraNeo4j "github.com/turtacn/risknet/internal/infrastructure/database/neo4j"
)

// MockGraphDriver implements infraNeo4j.DriverInterface.
type MockGraphDriver struct {
	mock.Mock
}

func (m *MockGraphDriver) ExecuteRead(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	args := m.Called(ctx, work)
	if fn, ok := args.Get(0).(func(context.Context, infraNeo4j.TransactionWork) (any, error)); ok {
		return fn(ctx, work)
	}
	return args.Get(0), args.Error(1)
}

func (m *MockGraphDriver) ExecuteWrite(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	args := m.Called(ctx, work)
	if fn, ok := args.Get(0).(func(context.Context, infraNeo4j.TransactionWork) (any, error)); ok {
		return fn(ctx, work)
	}
	return args.Get(0), args.Error(1)
}

func (m *MockGraphDriver) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGraphDriver) Close() error {
	return m.Called().Error(0)
}

// MockTransaction implements infraNeo4j.Transaction.
type MockTransaction struct {
	mock.Mock
}

func (m *MockTransaction) Run(ctx context.Context, cypher string, params map[string]any) (infraNeo4j.Result, error) {
	args := m.Called(ctx, cypher, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(infraNeo4j.Result), args.Error(1)
}

// stubResult implements infraNeo4j.Result over a fixed record slice.
type stubResult struct {
	records []*neo4j.Record
	cursor  int
	err     error
}

func (r *stubResult) Next(ctx context.Context) bool {
	if r.cursor < len(r.records) {
		r.cursor++
		return true
	}
	return false
}

func (r *stubResult) Record() *neo4j.Record {
	if r.cursor == 0 || r.cursor > len(r.records) {
		return nil
	}
	return r.records[r.cursor-1]
}

func (r *stubResult) Err() error { return r.err }

func (r *stubResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

// NewRecord builds a record with parallel key/value slices.
func NewRecord(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{
		Keys:   keys,
		Values: values,
	}
}

// SetupMockDriver wires ExecuteRead/ExecuteWrite to run the transaction
// work against a shared mock transaction.
func SetupMockDriver(t *testing.T) (*MockGraphDriver, *MockTransaction) {
	t.Helper()

	d := new(MockGraphDriver)
	tx := new(MockTransaction)

	d.On("ExecuteRead", mock.Anything, mock.Anything).Return(func(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
		return work(tx)
	})
	d.On("ExecuteWrite", mock.Anything, mock.Anything).Return(func(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
		return work(tx)
	})

	return d, tx
}
