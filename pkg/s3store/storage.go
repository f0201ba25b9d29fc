package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

const (
	defaultRegion = "us-east-1"
	hostLabel     = "s3"
)

// Options configures an S3-compatible bucket.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	// Endpoint is empty for AWS; set for any S3-compatible service.
	Endpoint string
	Region   string
	// PublicBaseURL overrides the URL prefix returned for stored objects.
	PublicBaseURL string
}

// StorageClient represents an S3-compatible object storage client
type StorageClient struct {
	s3Client   *s3.Client
	bucketName string
	publicBase string
}

// NewStorageClient creates a new S3 client
func NewStorageClient(opts Options) (*StorageClient, error) {
	if opts.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if opts.Region == "" {
		opts.Region = defaultRegion
	}

	s3Opts := s3.Options{
		Region: opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token not needed
		),
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}

	logger.Info("S3 storage client initialized",
		zap.String("bucket", opts.BucketName),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return &StorageClient{
		s3Client:   s3.New(s3Opts),
		bucketName: opts.BucketName,
		publicBase: PublicBase(opts),
	}, nil
}

// PublicBase returns the prefix object keys are appended to.
func PublicBase(opts Options) string {
	switch {
	case opts.PublicBaseURL != "":
		return strings.TrimRight(opts.PublicBaseURL, "/")
	case opts.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(opts.Endpoint, "/"), opts.BucketName)
	default:
		region := opts.Region
		if region == "" {
			region = defaultRegion
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.BucketName, region)
	}
}

// Upload stores body under key and returns the public URL of the object.
func (s *StorageClient) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	start := time.Now()
	operation := "putObject"

	data, err := io.ReadAll(body)
	if err != nil {
		metrics.ImageUploadDuration.WithLabelValues(hostLabel, "error").Observe(metrics.MeasureDuration(start))
		metrics.ImageUploadTotal.WithLabelValues(hostLabel, "error").Inc()
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ImageUploadDuration.WithLabelValues(hostLabel, "error").Observe(duration)
		metrics.ImageUploadTotal.WithLabelValues(hostLabel, "error").Inc()
		logger.LogAPICall(ctx, "s3_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}

	metrics.ImageUploadDuration.WithLabelValues(hostLabel, "success").Observe(duration)
	metrics.ImageUploadTotal.WithLabelValues(hostLabel, "success").Inc()
	logger.LogAPICall(ctx, "s3_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return s.publicBase + "/" + key, nil
}
