// Package repositories contains the PostgreSQL-backed stores.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	domain "github.com/turtacn/risknet/internal/domain/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/database/postgres"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// maxRecentLimit bounds how many history rows one query may return.
const maxRecentLimit = 100

// AssessmentRepo persists one audit row per completed assessment.
type AssessmentRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

var _ appassessment.HistoryStore = (*AssessmentRepo)(nil)

// NewAssessmentRepo builds the history store on a connected pool.
func NewAssessmentRepo(conn *postgres.Connection, log logging.Logger) *AssessmentRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AssessmentRepo{conn: conn, log: log}
}

func (r *AssessmentRepo) executor() queryExecutor {
	return r.conn.DB()
}

// Save inserts the audit row. Replays of the same assessment ID update the
// existing row instead of failing.
func (r *AssessmentRepo) Save(ctx context.Context, rec appassessment.HistoryRecord) error {
	factors, err := json.Marshal(rec.Factors)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode risk factors")
	}

	query := `
		INSERT INTO assessments (
			assessment_id, fingerprint, input_type, primary_name,
			risk_score, risk_level, factors, duration_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (assessment_id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level,
			factors = EXCLUDED.factors,
			duration_ms = EXCLUDED.duration_ms
	`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.executor().ExecContext(ctx, query,
		rec.AssessmentID, rec.Fingerprint, string(rec.InputType), rec.PrimaryName,
		rec.RiskScore, string(rec.RiskLevel), factors, rec.Duration.Milliseconds(), createdAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save assessment")
	}
	return nil
}

// Recent returns the newest rows first, capped at maxRecentLimit.
func (r *AssessmentRepo) Recent(ctx context.Context, limit int) ([]appassessment.HistoryRecord, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := `
		SELECT assessment_id, fingerprint, input_type, primary_name,
		       risk_score, risk_level, factors, duration_ms, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.executor().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query assessment history")
	}
	defer rows.Close()

	var out []appassessment.HistoryRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read assessment history")
	}
	return out, nil
}

// Count returns the total number of persisted assessments.
func (r *AssessmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count assessments")
	}
	return n, nil
}

// HealthCheck pings the underlying pool.
func (r *AssessmentRepo) HealthCheck(ctx context.Context) error {
	return r.conn.HealthCheck(ctx)
}

func scanAssessment(s scanner) (appassessment.HistoryRecord, error) {
	var (
		rec        appassessment.HistoryRecord
		inputType  string
		riskLevel  string
		factors    []byte
		durationMS int64
	)
	err := s.Scan(
		&rec.AssessmentID, &rec.Fingerprint, &inputType, &rec.PrimaryName,
		&rec.RiskScore, &riskLevel, &factors, &durationMS, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return rec, errors.New(errors.ErrCodeAssessmentNotFound, "assessment not found")
	}
	if err != nil {
		return rec, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan assessment row")
	}

	rec.InputType = entity.InputType(inputType)
	rec.RiskLevel = domain.RiskLevel(riskLevel)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &rec.Factors); err != nil {
			return rec, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode risk factors")
		}
	}
	return rec, nil
}
