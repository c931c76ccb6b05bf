package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
)

// Client is the API client for github-weekly-series
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetWeeklySeries retrieves one weekly series of a repository
func (c *Client) GetWeeklySeries(ctx context.Context, kind domain.SeriesKind, owner, repo string) (*domain.WeeklySeries, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/series/%s", url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(string(kind)))

	var response struct {
		Data *domain.WeeklySeries `json:"data"`
	}
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetDashboard retrieves every series of a repository
func (c *Client) GetDashboard(ctx context.Context, owner, repo string) (*domain.Dashboard, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/dashboard", url.PathEscape(owner), url.PathEscape(repo))

	var response struct {
		Data *domain.Dashboard `json:"data"`
	}
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListQueries retrieves the most recent journaled queries of a repository
func (c *Client) ListQueries(ctx context.Context, owner, repo string, limit int) ([]*domain.QueryRecord, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/queries", url.PathEscape(owner), url.PathEscape(repo))
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []*domain.QueryRecord `json:"data"`
	}
	if err := c.get(ctx, path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRateLimit retrieves the GitHub quota last observed by the server
func (c *Client) GetRateLimit(ctx context.Context) (*collector.Quota, error) {
	var response struct {
		Data *collector.Quota `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/rate-limit", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

// errorResponse is the error body written by the API
type errorResponse struct {
	Error struct {
		Code    apperrors.ErrCode `json:"code"`
		Message string            `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// decodeError turns an API error body back into an *errors.AppError
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Code != "" {
		return &apperrors.AppError{
			Code:    er.Error.Code,
			Message: er.Error.Message,
		}
	}
	return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
}
