package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// ErrReportNotFound is returned when a report object does not exist.
var ErrReportNotFound = errors.New(errors.ErrCodeNotFound, "report not found")

// ReportInfo describes one archived report object.
type ReportInfo struct {
	ObjectKey    string    `json:"object_key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ReportArchive stores one JSON document per completed assessment, keyed
// by date so operators can browse the bucket chronologically.
type ReportArchive struct {
	client *Client
	logger logging.Logger
}

var _ appassessment.ReportArchiver = (*ReportArchive)(nil)

// NewReportArchive builds the archiver on a connected client.
func NewReportArchive(client *Client, log logging.Logger) *ReportArchive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportArchive{client: client, logger: log}
}

// ReportKey derives the object key for a result:
// reports/<yyyy>/<mm>/<dd>/<assessment_id>.json
func ReportKey(res *appassessment.Result) string {
	ts := res.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return fmt.Sprintf("reports/%04d/%02d/%02d/%s.json",
		ts.Year(), ts.Month(), ts.Day(), res.AssessmentID)
}

// Archive uploads the full result document.
func (a *ReportArchive) Archive(ctx context.Context, res *appassessment.Result) error {
	if res == nil || res.AssessmentID == "" {
		return errors.New(errors.ErrCodeValidation, "result with assessment ID required")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}

	key := ReportKey(res)
	_, err = a.client.api.PutObject(ctx, a.client.Bucket(), key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "application/json",
			UserMetadata: map[string]string{
				"risk-level": string(res.RiskLevel),
				"input-type": string(res.InputType),
			},
		})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError,
			fmt.Sprintf("failed to archive report %s", res.AssessmentID))
	}

	a.logger.Debug("Report archived",
		logging.String("assessment_id", res.AssessmentID),
		logging.String("object_key", key),
		logging.Int("bytes", len(data)))
	return nil
}

// Fetch downloads and decodes one archived report by object key.
func (a *ReportArchive) Fetch(ctx context.Context, objectKey string) (*appassessment.Result, error) {
	obj, err := a.client.api.GetObject(ctx, a.client.Bucket(), objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to fetch report")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrReportNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read report")
	}

	var res appassessment.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode report")
	}
	return &res, nil
}

// List returns the report objects under prefix, newest last, capped at
// limit (0 means no cap).
func (a *ReportArchive) List(ctx context.Context, prefix string, limit int) ([]ReportInfo, error) {
	if prefix == "" {
		prefix = "reports/"
	}

	var out []ReportInfo
	objects := a.client.api.ListObjects(ctx, a.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "failed to list reports")
		}
		out = append(out, ReportInfo{
			ObjectKey:    obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
