package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client talks to the marketplace REST API. Every method takes the bearer
// token explicitly; the client never stores one.
type Client struct {
	baseURL    string
	httpClient httpclient.Client
}

// NewClient creates a backend client rooted at baseURL (e.g. https://api.equipskill.com/api/v1).
// Failed requests are never retried.
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// envelope is the common part of every response body.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// GetProfile fetches the token user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (models.Profile, error) {
	var out struct {
		Profile models.Profile `json:"profile"`
	}
	err := c.call(ctx, token, "getProfile", http.MethodGet, "/profile", nil, &out)
	return out.Profile, err
}

// UpdateProfile replaces the whole profile record.
func (c *Client) UpdateProfile(ctx context.Context, token string, p models.Profile) (models.Profile, error) {
	var out struct {
		Profile models.Profile `json:"profile"`
	}
	err := c.call(ctx, token, "updateProfile", http.MethodPut, "/profile", p, &out)
	return out.Profile, err
}

// ListEquipment returns the user's listings, never nil.
func (c *Client) ListEquipment(ctx context.Context, token string) ([]models.EquipmentItem, error) {
	var out struct {
		Equipment []models.EquipmentItem `json:"equipment"`
	}
	if err := c.call(ctx, token, "listEquipment", http.MethodGet, "/equipment", nil, &out); err != nil {
		return nil, err
	}
	if out.Equipment == nil {
		out.Equipment = []models.EquipmentItem{}
	}
	return out.Equipment, nil
}

// CreateEquipment sends a new listing. The server assigns the id.
func (c *Client) CreateEquipment(ctx context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error) {
	item.ID = ""
	var out struct {
		Item models.EquipmentItem `json:"item"`
	}
	err := c.call(ctx, token, "createEquipment", http.MethodPost, "/equipment", item, &out)
	return out.Item, err
}

// UpdateEquipment replaces the whole listing keyed by item.ID.
func (c *Client) UpdateEquipment(ctx context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error) {
	if item.ID == "" {
		return models.EquipmentItem{}, apperrors.InvalidInputError("id", "is required")
	}
	var out struct {
		Item models.EquipmentItem `json:"item"`
	}
	err := c.call(ctx, token, "updateEquipment", http.MethodPut, "/equipment/"+url.PathEscape(item.ID), item, &out)
	return out.Item, err
}

// DeleteEquipment removes the listing with the given id.
func (c *Client) DeleteEquipment(ctx context.Context, token, id string) error {
	if id == "" {
		return apperrors.InvalidInputError("id", "is required")
	}
	return c.call(ctx, token, "deleteEquipment", http.MethodDelete, "/equipment/"+url.PathEscape(id), nil, nil)
}

// GetStats fetches the dashboard counters.
func (c *Client) GetStats(ctx context.Context, token string) (models.DashboardStats, error) {
	var out struct {
		Stats models.DashboardStats `json:"stats"`
	}
	err := c.call(ctx, token, "getStats", http.MethodGet, "/stats", nil, &out)
	return out.Stats, err
}

// ListReviews returns the reviews written by the token's user.
func (c *Client) ListReviews(ctx context.Context, token string) ([]models.Review, error) {
	var out struct {
		Reviews []models.Review `json:"reviews"`
	}
	if err := c.call(ctx, token, "listReviews", http.MethodGet, "/reviews", nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

// CreateReview posts a new review by the token's user.
func (c *Client) CreateReview(ctx context.Context, token string, d models.ReviewDraft) (models.Review, error) {
	var out struct {
		Review models.Review `json:"review"`
	}
	err := c.call(ctx, token, "createReview", http.MethodPost, "/reviews", d, &out)
	return out.Review, err
}

// UpdateReview replaces the review with the given id.
func (c *Client) UpdateReview(ctx context.Context, token, id string, d models.ReviewDraft) (models.Review, error) {
	var out struct {
		Review models.Review `json:"review"`
	}
	err := c.call(ctx, token, "updateReview", http.MethodPut, "/reviews/"+url.PathEscape(id), d, &out)
	return out.Review, err
}

// DeleteReview removes the review with the given id.
func (c *Client) DeleteReview(ctx context.Context, token, id string) error {
	return c.call(ctx, token, "deleteReview", http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil)
}

// call performs one request and decodes the payload into out (may be nil).
// Non-2xx statuses and success=false bodies become *errors.RemoteError.
func (c *Client) call(ctx context.Context, token, operation, method, path string, body, out any) error {
	start := time.Now()

	err := c.do(ctx, token, method, path, body, out)

	duration := metrics.MeasureDuration(start)
	status := metrics.Status(err)
	metrics.BackendRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.BackendRequestTotal.WithLabelValues(operation, status).Inc()

	if err != nil {
		logger.LogAPICall(ctx, "backend", operation, status, duration,
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	logger.LogAPICall(ctx, "backend", operation, status, duration,
		zap.String("method", method), zap.String("path", path))
	return nil
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 {
		if jsonErr := json.Unmarshal(data, &env); jsonErr != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to decode response: %w", jsonErr)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (env.Success != nil && !*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" && resp.StatusCode < 300 {
			msg = "request was not successful"
		}
		return &apperrors.RemoteError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
