package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/pkg/cloudinary"
	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
	"github.com/equipskill/equipskill-dashboard/pkg/miniostore"
	"github.com/equipskill/equipskill-dashboard/pkg/s3store"
	"github.com/equipskill/equipskill-dashboard/pkg/slug"
)

// ErrDisabled is returned by the host used when IMAGE_HOST=none.
var ErrDisabled = errors.New("image uploads are disabled")

// File is one locally selected file. Open is called once per upload attempt.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromBytes wraps in-memory content.
func FromBytes(name string, data []byte) File {
	return File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath stats a file on disk and sniffs its content type.
func FromPath(p string) (File, error) {
	info, err := os.Stat(p)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", p)
	}
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return File{}, fmt.Errorf("failed to detect type of %s: %w", p, err)
	}
	return File{
		Name:        filepath.Base(p),
		ContentType: mt.String(),
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(p)
		},
	}, nil
}

// Host stores a file and returns its permanent URL.
type Host interface {
	Upload(ctx context.Context, f File) (string, error)
}

// ObjectKey builds a collision-free storage key: prefix/uuid-name.ext.
func ObjectKey(prefix, name string) string {
	key := uuid.NewString() + "-" + slug.FileName(name)
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

type disabled struct{}

func (disabled) Upload(_ context.Context, _ File) (string, error) {
	return "", ErrDisabled
}

// Cloudinary adapts the Cloudinary client.
type Cloudinary struct {
	Client *cloudinary.Client
}

func (h Cloudinary) Upload(ctx context.Context, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return h.Client.Upload(ctx, slug.FileName(f.Name), rc)
}

// S3 adapts an S3-compatible bucket.
type S3 struct {
	Client    *s3store.StorageClient
	KeyPrefix string
}

func (h S3) Upload(ctx context.Context, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return h.Client.Upload(ctx, ObjectKey(h.KeyPrefix, f.Name), contentType(f), rc)
}

// MinIO adapts a MinIO bucket.
type MinIO struct {
	Storage   *miniostore.Storage
	KeyPrefix string
}

func (h MinIO) Upload(ctx context.Context, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return h.Storage.Upload(ctx, ObjectKey(h.KeyPrefix, f.Name), contentType(f), rc, f.Size)
}

func contentType(f File) string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}

// New builds the host selected by cfg.Provider.
func New(cfg config.ImageHostConfig, httpClient httpclient.Client) (Host, error) {
	switch cfg.Provider {
	case "", config.ImageHostNone:
		return disabled{}, nil
	case config.ImageHostCloudinary:
		c, err := cloudinary.NewClient(cloudinary.Config{
			CloudName:    cfg.Cloudinary.CloudName,
			UploadPreset: cfg.Cloudinary.UploadPreset,
			APIKey:       cfg.Cloudinary.APIKey,
			APISecret:    cfg.Cloudinary.APISecret,
			Folder:       cfg.Cloudinary.Folder,
			BaseURL:      cfg.Cloudinary.BaseURL,
		}, httpClient)
		if err != nil {
			return nil, err
		}
		return Cloudinary{Client: c}, nil
	case config.ImageHostS3:
		c, err := s3store.NewStorageClient(s3store.Options{
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			BucketName:      cfg.S3.BucketName,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return S3{Client: c, KeyPrefix: cfg.S3.KeyPrefix}, nil
	case config.ImageHostMinIO:
		s, err := miniostore.New(miniostore.Config{
			Endpoint:      cfg.MinIO.Endpoint,
			AccessKey:     cfg.MinIO.AccessKey,
			SecretKey:     cfg.MinIO.SecretKey,
			UseSSL:        cfg.MinIO.UseSSL,
			Bucket:        cfg.MinIO.BucketName,
			PublicBaseURL: cfg.MinIO.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return MinIO{Storage: s, KeyPrefix: cfg.MinIO.KeyPrefix}, nil
	default:
		return nil, fmt.Errorf("unsupported image host %q", cfg.Provider)
	}
}
