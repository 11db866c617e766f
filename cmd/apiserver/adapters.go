package main

import (
	"context"

	"github.com/turtacn/risknet/internal/infrastructure/database/neo4j"
	"github.com/turtacn/risknet/internal/infrastructure/database/postgres"
	"github.com/turtacn/risknet/internal/infrastructure/database/redis"
	"github.com/turtacn/risknet/internal/infrastructure/storage/minio"
)

// Health adapters bridging infrastructure clients to the readiness probe.

type postgresHealthAdapter struct {
	conn *postgres.Connection
}

func (a *postgresHealthAdapter) Name() string { return "postgres" }

func (a *postgresHealthAdapter) Check(ctx context.Context) error {
	return a.conn.HealthCheck(ctx)
}

type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string { return "redis" }

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type neo4jHealthAdapter struct {
	driver *neo4j.Driver
}

func (a *neo4jHealthAdapter) Name() string { return "neo4j" }

func (a *neo4jHealthAdapter) Check(ctx context.Context) error {
	return a.driver.HealthCheck(ctx)
}

type minioHealthAdapter struct {
	client *minio.Client
}

func (a *minioHealthAdapter) Name() string { return "minio" }

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}
