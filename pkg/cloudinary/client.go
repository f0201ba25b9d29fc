package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

const (
	// DefaultBaseURL is the Cloudinary upload API root.
	DefaultBaseURL = "https://api.cloudinary.com/v1_1"

	hostLabel = "cloudinary"
)

// Config describes one Cloudinary account.
type Config struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	Folder       string
	BaseURL      string
}

// Client uploads files to Cloudinary. With an API key and secret it signs
// uploads through the SDK; otherwise it uses the unsigned preset endpoint.
type Client struct {
	cfg        Config
	httpClient httpclient.Client
	sdk        *cld.Cloudinary
}

// NewClient creates a Cloudinary client
func NewClient(cfg Config, httpClient httpclient.Client) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud name is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{cfg: cfg, httpClient: httpClient}

	if cfg.APIKey != "" && cfg.APISecret != "" {
		sdk, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		c.sdk = sdk
	} else if cfg.UploadPreset == "" {
		return nil, fmt.Errorf("cloudinary upload preset is required for unsigned uploads")
	}

	logger.Info("Cloudinary client initialized",
		zap.String("cloud_name", cfg.CloudName),
		zap.String("folder", cfg.Folder),
		zap.Bool("signed", c.sdk != nil),
	)

	return c, nil
}

// Signed reports whether uploads go through the signed SDK path.
func (c *Client) Signed() bool {
	return c.sdk != nil
}

// Upload stores one file and returns its permanent https URL.
func (c *Client) Upload(ctx context.Context, fileName string, body io.Reader) (string, error) {
	start := time.Now()
	operation := "upload"

	var (
		url string
		err error
	)
	if c.sdk != nil {
		url, err = c.uploadSigned(ctx, body)
	} else {
		url, err = c.uploadUnsigned(ctx, fileName, body)
	}

	duration := metrics.MeasureDuration(start)
	status := metrics.Status(err)
	metrics.ImageUploadDuration.WithLabelValues(hostLabel, status).Observe(duration)
	metrics.ImageUploadTotal.WithLabelValues(hostLabel, status).Inc()

	if err != nil {
		logger.LogAPICall(ctx, hostLabel, operation, status, duration,
			zap.String("file", fileName), zap.Error(err))
		return "", err
	}
	logger.LogAPICall(ctx, hostLabel, operation, status, duration,
		zap.String("file", fileName), zap.String("url", url))
	return url, nil
}

func (c *Client) uploadSigned(ctx context.Context, body io.Reader) (string, error) {
	resp, err := c.sdk.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:       c.cfg.Folder,
		UploadPreset: c.cfg.UploadPreset,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("cloudinary response is nil")
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}
	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	return "", fmt.Errorf("cloudinary returned no URL")
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) uploadUnsigned(ctx context.Context, fileName string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	_ = form.WriteField("upload_preset", c.cfg.UploadPreset) //nolint:errcheck // writes to a bytes.Buffer
	if c.cfg.Folder != "" {
		_ = form.WriteField("folder", c.cfg.Folder) //nolint:errcheck // writes to a bytes.Buffer
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/auto/upload", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return "", fmt.Errorf("cloudinary returned %d with an unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Error.Message != "" {
			return "", fmt.Errorf("cloudinary returned %d: %s", resp.StatusCode, result.Error.Message)
		}
		return "", fmt.Errorf("cloudinary returned %d", resp.StatusCode)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return "", fmt.Errorf("cloudinary returned no URL")
}
