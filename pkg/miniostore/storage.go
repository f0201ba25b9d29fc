package miniostore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

const hostLabel = "minio"

// Config configures a MinIO bucket.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

// Storage uploads objects to one MinIO bucket.
type Storage struct {
	cfg    Config
	client *minio.Client
}

// New creates a MinIO storage client. Endpoint may carry an http(s) scheme.
func New(cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	cl, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}
	cfg.Endpoint = host
	cfg.UseSSL = secure

	logger.Info("MinIO storage client initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", host),
		zap.Bool("ssl", secure),
	)

	return &Storage{cfg: cfg, client: cl}, nil
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// PublicURL is the address an uploaded key is served from.
func (s *Storage) PublicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}

// Upload streams size bytes of body under key.
func (s *Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	start := time.Now()
	operation := "putObject"

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})

	duration := metrics.MeasureDuration(start)
	status := metrics.Status(err)
	metrics.ImageUploadDuration.WithLabelValues(hostLabel, status).Observe(duration)
	metrics.ImageUploadTotal.WithLabelValues(hostLabel, status).Inc()

	if err != nil {
		logger.LogAPICall(ctx, "minio_storage", operation, status, duration,
			zap.Error(err), zap.String("key", key))
		return "", fmt.Errorf("failed to upload object to minio: %w", err)
	}
	logger.LogAPICall(ctx, "minio_storage", operation, status, duration,
		zap.String("key", key), zap.Int64("size_bytes", size))

	return s.PublicURL(key), nil
}
