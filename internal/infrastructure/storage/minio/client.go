// Package minio archives full assessment reports to S3-compatible object
// storage for long-term retention.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// API is the subset of the MinIO SDK the archive uses, abstracted for
// testing.
type API interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Config holds object-storage connection parameters.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
	RetentionDays   int
	PresignExpiry   time.Duration
}

// Client wraps the MinIO SDK for the report bucket.
type Client struct {
	api    API
	config Config
	logger logging.Logger
}

// NewClient connects, verifies reachability and ensures the report bucket
// exists with its retention rule.
func NewClient(cfg Config, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(&cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to connect to minio")
	}

	c := &Client{api: api, config: cfg, logger: log}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewClientWithAPI wraps an existing API implementation (for testing).
func NewClientWithAPI(api API, cfg Config, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(&cfg)
	return &Client{api: api, config: cfg, logger: log}
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "risknet-reports"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

// Bucket returns the report bucket name.
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// EnsureBucket creates the report bucket if missing and applies the
// retention lifecycle when configured.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError,
				fmt.Sprintf("failed to create bucket %s", c.config.Bucket))
		}
		c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	}

	if c.config.RetentionDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{
			{
				ID:     "report-retention",
				Status: "Enabled",
				Expiration: lifecycle.Expiration{
					Days: lifecycle.ExpirationDays(c.config.RetentionDays),
				},
			},
		}
		if err := c.api.SetBucketLifecycle(ctx, c.config.Bucket, lc); err != nil {
			// Lifecycle support varies across S3 backends.
			c.logger.Warn("Failed to set report retention", logging.Err(err))
		}
	}
	return nil
}

// HealthCheck verifies reachability and the report bucket.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "minio unreachable")
	}
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket")
	}
	if !exists {
		return errors.New(errors.ErrCodeStorageError,
			fmt.Sprintf("bucket %s missing", c.config.Bucket))
	}
	return nil
}

// PresignedReportURL returns a time-limited download URL for a stored
// report.
func (c *Client) PresignedReportURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = c.config.PresignExpiry
	}
	u, err := c.api.PresignedGetObject(ctx, c.config.Bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign report URL")
	}
	return u.String(), nil
}
