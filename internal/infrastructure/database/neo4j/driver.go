// Package neo4j wraps the official Neo4j driver behind a small transaction
// abstraction so the graph repositories can be exercised against mocks.
package neo4j

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// Config holds connection parameters for the relationship graph.
type Config struct {
	URI                          string
	Username                     string
	Password                     string
	Database                     string
	MaxConnectionPoolSize        int
	MaxConnectionLifetime        time.Duration
	ConnectionAcquisitionTimeout time.Duration
}

// Result abstracts neo4j.ResultWithContext.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// Transaction abstracts neo4j.ManagedTransaction.
type Transaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// TransactionWork is a unit of work executed inside a managed transaction.
type TransactionWork func(Transaction) (any, error)

// DriverInterface is the surface the graph repositories depend on.
type DriverInterface interface {
	ExecuteRead(ctx context.Context, work TransactionWork) (any, error)
	ExecuteWrite(ctx context.Context, work TransactionWork) (any, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// internalSession abstracts neo4j.SessionWithContext.
type internalSession interface {
	ExecuteRead(ctx context.Context, work TransactionWork) (any, error)
	ExecuteWrite(ctx context.Context, work TransactionWork) (any, error)
	Close(ctx context.Context) error
}

// internalDriver abstracts neo4j.DriverWithContext.
type internalDriver interface {
	VerifyConnectivity(ctx context.Context) error
	NewSession(ctx context.Context, config neo4j.SessionConfig) internalSession
	Close(ctx context.Context) error
}

type stdResult struct {
	res neo4j.ResultWithContext
}

func (r *stdResult) Next(ctx context.Context) bool { return r.res.Next(ctx) }
func (r *stdResult) Record() *neo4j.Record         { return r.res.Record() }
func (r *stdResult) Err() error                    { return r.res.Err() }
func (r *stdResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return r.res.Consume(ctx)
}

type stdTransaction struct {
	tx neo4j.ManagedTransaction
}

func (t *stdTransaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &stdResult{res: res}, nil
}

type stdSession struct {
	s neo4j.SessionWithContext
}

func (s *stdSession) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	return s.s.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&stdTransaction{tx: tx})
	})
}

func (s *stdSession) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	return s.s.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&stdTransaction{tx: tx})
	})
}

func (s *stdSession) Close(ctx context.Context) error { return s.s.Close(ctx) }

type stdDriver struct {
	d neo4j.DriverWithContext
}

func (d *stdDriver) VerifyConnectivity(ctx context.Context) error {
	return d.d.VerifyConnectivity(ctx)
}

func (d *stdDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) internalSession {
	return &stdSession{s: d.d.NewSession(ctx, config)}
}

func (d *stdDriver) Close(ctx context.Context) error { return d.d.Close(ctx) }

// Driver manages sessions against one Neo4j database.
type Driver struct {
	driver internalDriver
	cfg    Config
	logger logging.Logger
	once   sync.Once
}

// NewDriver connects to Neo4j and verifies connectivity before returning.
func NewDriver(cfg Config, log logging.Logger) (*Driver, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.MaxConnectionPoolSize <= 0 {
		cfg.MaxConnectionPoolSize = 50
	}
	if cfg.MaxConnectionLifetime <= 0 {
		cfg.MaxConnectionLifetime = time.Hour
	}
	if cfg.ConnectionAcquisitionTimeout <= 0 {
		cfg.ConnectionAcquisitionTimeout = 60 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			c.MaxConnectionLifetime = cfg.MaxConnectionLifetime
			c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphError, "failed to create neo4j driver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphError, "failed to connect to neo4j")
	}

	log.Info("Connected to Neo4j", logging.String("uri", cfg.URI), logging.String("database", cfg.Database))

	return &Driver{
		driver: &stdDriver{d: driver},
		cfg:    cfg,
		logger: log,
	}, nil
}

func (d *Driver) session(ctx context.Context, accessMode neo4j.AccessMode) internalSession {
	dbName := d.cfg.Database
	if dbName == "" {
		dbName = "neo4j"
	}
	return d.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: dbName,
		AccessMode:   accessMode,
	})
}

// ExecuteRead runs work inside a read transaction.
func (d *Driver) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	session := d.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, work)
	if err != nil {
		d.logger.Error("Neo4j read transaction failed", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeGraphError, "neo4j read failed")
	}
	return result, nil
}

// ExecuteWrite runs work inside a write transaction.
func (d *Driver) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		d.logger.Error("Neo4j write transaction failed", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeGraphError, "neo4j write failed")
	}
	return result, nil
}

// HealthCheck verifies connectivity and runs a trivial query.
func (d *Driver) HealthCheck(ctx context.Context) error {
	if err := d.driver.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphError, "neo4j connectivity check failed")
	}

	_, err := d.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, "RETURN 1 AS health", nil)
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return result.Record().Values[0], nil
		}
		return nil, result.Err()
	})
	return err
}

// Close shuts the underlying driver down. Safe to call more than once.
func (d *Driver) Close() error {
	var err error
	d.once.Do(func() {
		err = d.driver.Close(context.Background())
		if err == nil {
			d.logger.Info("Closed Neo4j driver")
		} else {
			d.logger.Error("Failed to close Neo4j driver", logging.Err(err))
		}
	})
	return err
}

// CollectRecords drains a result, mapping each record through mapper.
func CollectRecords[T any](ctx context.Context, result Result, mapper func(*neo4j.Record) (T, error)) ([]T, error) {
	var items []T
	for result.Next(ctx) {
		item, err := mapper(result.Record())
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
