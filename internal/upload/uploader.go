package upload

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
	"github.com/equipskill/equipskill-dashboard/pkg/tracing"
)

// Uploader enforces the batch policy and fans a batch out to the image host.
type Uploader struct {
	host imagehost.Host
}

// NewUploader creates an uploader over host
func NewUploader(host imagehost.Host) *Uploader {
	return &Uploader{host: host}
}

// Upload checks the batch, then uploads every file concurrently. It returns
// the URLs in input order, or a single *errors.UploadError and no URLs when
// any file fails. Requests already in flight are not aborted; their results
// are dropped.
func (u *Uploader) Upload(ctx context.Context, existing int, files []imagehost.File, c Constraints) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "upload.batch",
		attribute.Int("upload.existing", existing),
		attribute.Int("upload.selected", len(files)),
	)
	start := time.Now()

	if err := Check(existing, files, c); err != nil {
		metrics.UploadBatches.WithLabelValues(rejection(err)).Inc()
		logger.Warn("Upload batch rejected",
			zap.Int("existing", existing),
			zap.Int("selected", len(files)),
			zap.Error(err))
		tracing.EndSpan(span, err)
		return nil, err
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			url, err := u.host.Upload(gctx, f)
			if err != nil {
				return &apperrors.UploadError{File: f.Name, Err: err}
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.UploadBatches.WithLabelValues("failed").Inc()
		logger.Error("Upload batch failed",
			zap.Int("selected", len(files)),
			zap.Float64("duration", metrics.MeasureDuration(start)),
			zap.Error(err))
		tracing.EndSpan(span, err)
		return nil, err
	}

	metrics.UploadBatches.WithLabelValues("accepted").Inc()
	logger.Info("Upload batch stored",
		zap.Int("files", len(files)),
		zap.Float64("duration", metrics.MeasureDuration(start)))
	tracing.EndSpan(span, nil)
	return urls, nil
}

func rejection(err error) string {
	var tooMany *apperrors.TooManyFilesError
	var tooLarge *apperrors.PayloadTooLargeError
	switch {
	case errors.As(err, &tooMany):
		return "too_many_files"
	case errors.As(err, &tooLarge):
		return "too_large"
	default:
		return "invalid"
	}
}
