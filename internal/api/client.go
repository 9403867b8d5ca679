package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tmaekawa/nippo/internal/models"
)

const defaultTimeout = 30 * time.Second

// Config carries the settings for the API client.
type Config struct {
	// BaseURL is the server address, e.g. http://localhost:8080.
	BaseURL string
	// Token is the bearer token attached to authenticated requests.
	// Leave empty for login and register.
	Token string
	// Timeout bounds each request. Zero means a 30 second default.
	Timeout time.Duration
}

// Client talks to the nippo server over its JSON API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates an API client for the given server.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the server, carrying the message
// from the response body when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// LoginResult is the successful login response.
type LoginResult struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) (*models.PublicUser, error) {
	body := map[string]string{"username": username, "password": password}

	var result struct {
		Message string             `json:"message"`
		User    *models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// ListReports fetches reports, newest first. Author filters by username when
// non-empty, and limit caps the result when positive.
func (c *Client) ListReports(ctx context.Context, author string, limit int) ([]*models.Report, error) {
	path := "/api/reports"
	query := url.Values{}
	if author != "" {
		query.Set("author", author)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var reports []*models.Report
	if err := c.do(ctx, http.MethodGet, path, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport fetches a single report by id.
func (c *Client) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ReportDraft is the writable part of a report.
type ReportDraft struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// CreateReport submits a new report. The author comes from the token.
func (c *Client) CreateReport(ctx context.Context, draft ReportDraft) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodPost, "/api/reports", draft, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReport replaces the writable fields of an existing report.
func (c *Client) UpdateReport(ctx context.Context, id string, draft ReportDraft) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodPut, "/api/reports/"+url.PathEscape(id), draft, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reports/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiErrorFrom(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}
